package quizgame

import (
	"encoding/gob"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// SessionName is the cookie name of the player session
	SessionName = "quiz-session"

	solvedKey = "randomPlay"
	sidKey    = "sid"
)

func init() {
	gob.Register([]int64{})
}

// LoadGameState reads the random play state out of a session.
// Malformed values are repaired rather than rejected: non-numeric or
// non-positive ids and repeats are dropped, anything else reads as empty.
func LoadGameState(session *sessions.Session) GameState {
	raw, ok := session.Values[solvedKey]
	if !ok || raw == nil {
		return GameState{}
	}

	var ids []int64
	switch v := raw.(type) {
	case []int64:
		ids = v
	case []int:
		for _, id := range v {
			ids = append(ids, int64(id))
		}
	case []interface{}:
		for _, item := range v {
			switch id := item.(type) {
			case int64:
				ids = append(ids, id)
			case int:
				ids = append(ids, int64(id))
			case float64:
				if id == float64(int64(id)) {
					ids = append(ids, int64(id))
				}
			}
		}
	default:
		VerboseLog("Ignoring malformed random play state of type %T", raw)
		return GameState{}
	}

	seen := make(map[int64]bool, len(ids))
	solved := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		solved = append(solved, id)
	}
	if len(solved) != len(ids) {
		VerboseLog("Repaired random play state: kept %d of %d ids", len(solved), len(ids))
	}
	return GameState{Solved: solved}
}

// StoreGameState writes the random play state into a session. The caller saves the session.
func StoreGameState(session *sessions.Session, state GameState) {
	solved := make([]int64, len(state.Solved))
	copy(solved, state.Solved)
	session.Values[solvedKey] = solved
}

// SessionKey returns a stable identifier for the session. Server side stores
// provide one; for cookie sessions a random sid is minted and kept in the
// session values. fresh is true when the sid was minted by this call.
func SessionKey(session *sessions.Session) (key string, fresh bool) {
	if session.ID != "" {
		return session.ID, false
	}
	if sid, ok := session.Values[sidKey].(string); ok && sid != "" {
		return sid, false
	}
	sid := uuid.NewString()
	session.Values[sidKey] = sid
	return sid, true
}
