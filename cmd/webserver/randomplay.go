package main

import (
	"log"
	"net/http"

	"quizgame"

	"github.com/gorilla/sessions"
)

// lockGame loads the player session under its per-session lock. The session
// is read again once the lock is held so a request never works on state that
// a concurrent request of the same session has already replaced. This only
// holds for server side stores; a cookie store re-reads the request cookie.
func (s *Server) lockGame(r *http.Request) (*sessions.Session, func(), error) {
	session, err := s.store.Get(r, quizgame.SessionName)
	if session == nil {
		return nil, nil, err
	}
	if err != nil {
		// undecodable cookie: the player starts over with a fresh session
		log.Printf("Discarding unreadable session: %v", err)
	}

	key, fresh := quizgame.SessionKey(session)
	if fresh {
		return session, func() {}, nil
	}

	unlock := s.locks.Lock(key)
	reloaded, err := s.store.New(r, quizgame.SessionName)
	if err == nil && !reloaded.IsNew {
		session = reloaded
	}
	return session, unlock, nil
}

// handleRandomPlay serves the next unseen quiz, or the final score when none is left
func (s *Server) handleRandomPlay(w http.ResponseWriter, r *http.Request) {
	session, unlock, err := s.lockGame(r)
	if err != nil {
		log.Printf("Session error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	defer unlock()

	state := quizgame.LoadGameState(session)
	next, turn, err := s.tracker.ContinueGame(r.Context(), state)
	if err != nil {
		writeError(w, err)
		return
	}

	quizgame.StoreGameState(session, next)
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

// handleRandomCheck scores an answer for the quiz in the URL
func (s *Server) handleRandomCheck(w http.ResponseWriter, r *http.Request) {
	quiz := quizFromContext(r)
	answer := r.FormValue("answer")

	session, unlock, err := s.lockGame(r)
	if err != nil {
		log.Printf("Session error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	defer unlock()

	next, verdict := quizgame.SubmitAnswer(quizgame.LoadGameState(session), quiz, answer)
	if verdict.Duplicate {
		log.Printf("Quiz %d was already solved in this game, score unchanged", quiz.ID)
	}

	quizgame.StoreGameState(session, next)
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}
