package quizgame

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// newTestDB opens a fresh pure-Go SQLite database with the schema in place
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := OpenDB(ctx, DriverSQLite, filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.CloseDB() })

	if err := db.CreateTables(ctx); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

func seedQuizzes(t *testing.T, db *DB, quizzes ...QuizItem) []QuizItem {
	t.Helper()
	out := make([]QuizItem, 0, len(quizzes))
	for _, q := range quizzes {
		quiz := q
		if err := db.CreateQuiz(context.Background(), &quiz); err != nil {
			t.Fatalf("seed %q: %v", q.Question, err)
		}
		out = append(out, quiz)
	}
	return out
}

func TestQuizCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	quiz := &QuizItem{Question: "Capital of Italy", Answer: "Rome", AuthorID: 3}
	if err := db.CreateQuiz(ctx, quiz); err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == 0 || quiz.CreatedAt.IsZero() {
		t.Fatalf("create did not fill id/timestamps: %+v", quiz)
	}

	got, err := db.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Question != quiz.Question || got.Answer != "Rome" || got.AuthorID != 3 {
		t.Errorf("get returned %+v", got)
	}

	got.Answer = "Roma"
	if err := db.UpdateQuiz(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if again, _ := db.GetQuiz(ctx, quiz.ID); again.Answer != "Roma" {
		t.Errorf("update not persisted: %+v", again)
	}

	if err := db.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetQuiz(ctx, quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}
	if err := db.DeleteQuiz(ctx, quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if err := db.UpdateQuiz(ctx, &QuizItem{ID: 999, Question: "q", Answer: "a"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}
}

func TestFindQuizzesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seeded := seedQuizzes(t, db,
		QuizItem{Question: "Capital of France", Answer: "Paris", AuthorID: 1},
		QuizItem{Question: "Capital of Spain", Answer: "Madrid", AuthorID: 2},
		QuizItem{Question: "2+2", Answer: "4", AuthorID: 1},
		QuizItem{Question: "Largest planet", Answer: "Jupiter", AuthorID: 2},
	)

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all", Filter{}, []int64{seeded[0].ID, seeded[1].ID, seeded[2].ID, seeded[3].ID}},
		{"exclude", Filter{ExcludeIDs: []int64{seeded[0].ID, seeded[2].ID}}, []int64{seeded[1].ID, seeded[3].ID}},
		{"search words become wildcards", Filter{Search: "capital  spain"}, []int64{seeded[1].ID}},
		{"search is case insensitive", Filter{Search: "CAPITAL"}, []int64{seeded[0].ID, seeded[1].ID}},
		{"author", Filter{AuthorID: 1}, []int64{seeded[0].ID, seeded[2].ID}},
		{"combined", Filter{AuthorID: 2, ExcludeIDs: []int64{seeded[1].ID}}, []int64{seeded[3].ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := db.CountQuizzes(ctx, tt.filter)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if count != len(tt.want) {
				t.Errorf("count = %d, want %d", count, len(tt.want))
			}

			items, err := db.FindQuizzes(ctx, tt.filter, 0, 10)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			var ids []int64
			for _, q := range items {
				ids = append(ids, q.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v (id order)", ids, tt.want)
				}
			}
		})
	}
}

func TestFindQuizzesOffsetLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seeded := seedQuizzes(t, db,
		QuizItem{Question: "a", Answer: "1"},
		QuizItem{Question: "b", Answer: "2"},
		QuizItem{Question: "c", Answer: "3"},
	)

	items, err := db.FindQuizzes(ctx, Filter{}, 1, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(items) != 1 || items[0].ID != seeded[1].ID {
		t.Errorf("offset 1 limit 1 = %+v, want quiz %d", items, seeded[1].ID)
	}

	items, err = db.FindQuizzes(ctx, Filter{}, 5, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("offset past the end returned %+v", items)
	}
}

func TestSelectorOverSQLite(t *testing.T) {
	db := newTestDB(t)
	seeded := seedQuizzes(t, db,
		QuizItem{Question: "a", Answer: "1"},
		QuizItem{Question: "b", Answer: "2"},
		QuizItem{Question: "c", Answer: "3"},
	)

	sel := NewSelector(db, constUniform(0.5))
	quiz, err := sel.SelectNext(context.Background(), []int64{seeded[0].ID})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// candidates are b, c; floor(2 * 0.5) = 1
	if quiz.ID != seeded[2].ID {
		t.Errorf("selected %d, want %d", quiz.ID, seeded[2].ID)
	}

	all := []int64{seeded[0].ID, seeded[1].ID, seeded[2].ID}
	if _, err := sel.SelectNext(context.Background(), all); !errors.Is(err, ErrExhausted) {
		t.Errorf("got %v, want ErrExhausted", err)
	}
}

func TestStoreUnavailableAfterClose(t *testing.T) {
	db := newTestDB(t)
	db.CloseDB()

	if _, err := db.CountQuizzes(context.Background(), Filter{}); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("got %v, want ErrStoreUnavailable", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	got := pg.rebind("SELECT * FROM quizzes WHERE id NOT IN (?, ?) AND author_id = ? LIMIT ? OFFSET ?")
	want := "SELECT * FROM quizzes WHERE id NOT IN ($1, $2) AND author_id = $3 LIMIT $4 OFFSET $5"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	lite := &DB{driver: DriverSQLite3}
	if q := "SELECT ?"; lite.rebind(q) != q {
		t.Errorf("sqlite query was rewritten")
	}
}

func TestOpenDBUnsupportedDriver(t *testing.T) {
	if _, err := OpenDB(context.Background(), "oracle", ""); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}
