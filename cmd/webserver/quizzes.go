package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quizgame"

	"github.com/go-chi/chi/v5"
)

type ctxKey string

const ctxKeyQuiz ctxKey = "quiz"

type quizPage struct {
	Items    []quizgame.QuizItem `json:"items"`
	Search   string              `json:"search,omitempty"`
	AuthorID int64               `json:"author_id,omitempty"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	Pages    int                 `json:"pages"`
	PageSize int                 `json:"page_size"`
}

// loadQuiz resolves {quizID} and stores the quiz in the request context
func (s *Server) loadQuiz(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}

		quiz, err := s.db.GetQuiz(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyQuiz, quiz)))
	})
}

func quizFromContext(r *http.Request) *quizgame.QuizItem {
	quiz, _ := r.Context().Value(ctxKeyQuiz).(*quizgame.QuizItem)
	return quiz
}

// handleListQuizzes serves GET /quizzes and GET /users/{userID}/quizzes
func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	filter := quizgame.Filter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}

	if userID := chi.URLParam(r, "userID"); userID != "" {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}
		filter.AuthorID = id
	}

	total, err := s.db.CountQuizzes(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("pageno"))
	if err != nil || page < 1 {
		page = 1
	}

	items, err := s.db.FindQuizzes(r.Context(), filter, s.pageSize*(page-1), s.pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []quizgame.QuizItem{}
	}

	writeJSON(w, http.StatusOK, quizPage{
		Items:    items,
		Search:   filter.Search,
		AuthorID: filter.AuthorID,
		Total:    total,
		Page:     page,
		Pages:    (total + s.pageSize - 1) / s.pageSize,
		PageSize: s.pageSize,
	})
}

func (s *Server) handleShowQuiz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, quizFromContext(r))
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	quiz := &quizgame.QuizItem{
		Question: r.FormValue("question"),
		Answer:   r.FormValue("answer"),
	}
	if quiz.Question == "" || quiz.Answer == "" {
		http.Error(w, "Question and answer are required", http.StatusBadRequest)
		return
	}
	if authorID := r.FormValue("author_id"); authorID != "" {
		id, err := strconv.ParseInt(authorID, 10, 64)
		if err != nil || id < 0 {
			http.Error(w, "Invalid author_id", http.StatusBadRequest)
			return
		}
		quiz.AuthorID = id
	}

	if err := s.db.CreateQuiz(r.Context(), quiz); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/quizzes/%d", quiz.ID))
	writeJSON(w, http.StatusCreated, quiz)
}

func (s *Server) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	quiz := *quizFromContext(r)
	quiz.Question = r.FormValue("question")
	quiz.Answer = r.FormValue("answer")
	if quiz.Question == "" || quiz.Answer == "" {
		http.Error(w, "Question and answer are required", http.StatusBadRequest)
		return
	}

	if err := s.db.UpdateQuiz(r.Context(), &quiz); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &quiz)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteQuiz(r.Context(), quizFromContext(r).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePlayQuiz shows a single quiz, echoing a previous answer if given
func (s *Server) handlePlayQuiz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quiz":   quizFromContext(r).Prompt(),
		"answer": r.URL.Query().Get("answer"),
	})
}

// handleCheckQuiz checks an answer for a single quiz without touching the random play game
func (s *Server) handleCheckQuiz(w http.ResponseWriter, r *http.Request) {
	quiz := quizFromContext(r)
	answer := r.URL.Query().Get("answer")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quiz_id": quiz.ID,
		"answer":  answer,
		"result":  quizgame.AnswerMatches(answer, quiz.Answer),
	})
}
