package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi"

	"study-assistant/internal/quiz"
)

const (
	serverDefaultDifficulty   = "medium"
	serverDefaultExamType     = "WAEC"
	serverDefaultNumQuestions = 10
)

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Msg: "Missing Authorization Header"})
			return
		}
		if header != "Bearer "+s.token {
			writeJSON(w, http.StatusUnprocessableEntity, messageResponse{Msg: "Signature verification failed"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var request quiz.GenerateParams
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if injected, ok := s.beginLocked(OpGenerate); ok {
		writeJSON(w, injected.status, errorResponse{Error: injected.message})
		return
	}

	received := request
	s.lastGenerate = &received

	if strings.TrimSpace(request.Subject) == "" || strings.TrimSpace(request.Topic) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Subject and topic are required"})
		return
	}
	if request.Difficulty == "" {
		request.Difficulty = serverDefaultDifficulty
	}
	if request.ExamType == "" {
		request.ExamType = serverDefaultExamType
	}
	if request.NumQuestions <= 0 {
		request.NumQuestions = serverDefaultNumQuestions
	}

	stored := &storedQuiz{
		id:           s.newIDLocked("quiz"),
		title:        fmt.Sprintf("%s - %s Quiz", request.Subject, request.Topic),
		subject:      request.Subject,
		topic:        request.Topic,
		difficulty:   request.Difficulty,
		questions:    s.questions(request),
		timeLimit:    s.timeLimit,
		passingScore: defaultPassingScore,
		createdAt:    s.now(),
	}
	s.quizzes[stored.id] = stored
	s.quizOrder = append(s.quizOrder, stored.id)

	writeJSON(w, http.StatusCreated, generateResponse{
		Success: true,
		Quiz: generatedQuiz{
			ID:           stored.id,
			Title:        stored.title,
			Subject:      stored.subject,
			Topic:        stored.topic,
			Difficulty:   stored.difficulty,
			NumQuestions: len(stored.questions),
			TimeLimit:    stored.timeLimit,
		},
	})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if injected, ok := s.beginLocked(OpFetch); ok {
		writeJSON(w, injected.status, errorResponse{Error: injected.message})
		return
	}

	stored, ok := s.quizzes[quizID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Quiz not found"})
		return
	}

	// Answers and explanations never leave the server before submission.
	questions := make([]quiz.Question, 0, len(stored.questions))
	for _, question := range stored.questions {
		questions = append(questions, question.Question)
	}

	writeJSON(w, http.StatusOK, fetchResponse{
		Quiz: fetchedQuiz{
			ID:           stored.id,
			Title:        stored.title,
			Subject:      stored.subject,
			Topic:        stored.topic,
			Difficulty:   stored.difficulty,
			Questions:    questions,
			TimeLimit:    stored.timeLimit,
			PassingScore: stored.passingScore,
		},
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if injected, ok := s.beginLocked(OpStart); ok {
		writeJSON(w, injected.status, errorResponse{Error: injected.message})
		return
	}

	stored, ok := s.quizzes[quizID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Quiz not found"})
		return
	}
	for _, attempt := range s.attempts {
		if attempt.quizID == quizID && !attempt.completed {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "You already have an incomplete attempt for this quiz"})
			return
		}
	}

	attempt := &storedAttempt{
		id:             s.newIDLocked("attempt"),
		quizID:         quizID,
		answers:        map[string]string{},
		totalQuestions: len(stored.questions),
		startedAt:      s.now(),
	}
	s.attempts[attempt.id] = attempt
	s.attemptOrder = append(s.attemptOrder, attempt.id)

	writeJSON(w, http.StatusCreated, startResponse{
		Success:        true,
		AttemptID:      attempt.id,
		TimeLimit:      stored.timeLimit,
		TotalQuestions: len(stored.questions),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	defer r.Body.Close()

	var request submitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if injected, ok := s.beginLocked(OpSubmit); ok {
		writeJSON(w, injected.status, errorResponse{Error: injected.message})
		return
	}

	attempt, ok := s.attempts[attemptID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Quiz attempt not found"})
		return
	}
	if attempt.completed {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Quiz already completed"})
		return
	}
	stored, ok := s.quizzes[attempt.quizID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Quiz not found"})
		return
	}

	answers := request.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	correct := 0
	detailed := make([]quiz.DetailedResult, 0, len(stored.questions))
	for idx, question := range stored.questions {
		userAnswer := answers[fmt.Sprintf("%d", idx)]
		isCorrect := userAnswer == question.CorrectAnswer
		if isCorrect {
			correct++
		}
		detailed = append(detailed, quiz.DetailedResult{
			Question:      question.Question.Question,
			UserAnswer:    userAnswer,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   question.Explanation,
		})
	}

	var score float64
	if total := len(stored.questions); total > 0 {
		score = float64(correct) / float64(total) * 100
	}
	passed := score >= stored.passingScore

	attempt.answers = answers
	attempt.score = score
	attempt.correctAnswers = correct
	attempt.timeTaken = request.TimeTaken
	attempt.completed = true
	attempt.completedAt = s.now()
	attempt.passed = passed

	writeJSON(w, http.StatusOK, submitResponse{
		Success:         true,
		Score:           score,
		CorrectAnswers:  correct,
		TotalQuestions:  len(stored.questions),
		Passed:          passed,
		TimeTaken:       request.TimeTaken,
		DetailedResults: detailed,
	})
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if injected, ok := s.beginLocked(OpAttempts); ok {
		writeJSON(w, injected.status, errorResponse{Error: injected.message})
		return
	}

	items := make([]attemptItem, 0, len(s.attemptOrder))
	for _, id := range s.attemptOrder {
		attempt := s.attempts[id]
		item := attemptItem{
			ID:             attempt.id,
			QuizID:         attempt.quizID,
			Score:          attempt.score,
			TotalQuestions: attempt.totalQuestions,
			CorrectAnswers: attempt.correctAnswers,
			TimeTaken:      attempt.timeTaken,
			Completed:      attempt.completed,
			Passed:         attempt.passed,
			StartedAt:      attempt.startedAt.Format(isoLayout),
		}
		if attempt.completed {
			item.CompletedAt = attempt.completedAt.Format(isoLayout)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.attempts[items[i].ID].startedAt.After(s.attempts[items[j].ID].startedAt)
	})

	writeJSON(w, http.StatusOK, attemptsResponse{Attempts: items})
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if injected, ok := s.beginLocked(OpAvailable); ok {
		writeJSON(w, injected.status, errorResponse{Error: injected.message})
		return
	}

	items := make([]availableItem, 0, len(s.quizOrder))
	for idx := len(s.quizOrder) - 1; idx >= 0; idx-- {
		stored := s.quizzes[s.quizOrder[idx]]
		if subject != "" && stored.subject != subject {
			continue
		}
		items = append(items, availableItem{
			ID:           stored.id,
			Title:        stored.title,
			Subject:      stored.subject,
			Topic:        stored.topic,
			Difficulty:   stored.difficulty,
			TimeLimit:    stored.timeLimit,
			PassingScore: stored.passingScore,
			CreatedAt:    stored.createdAt.Format(isoLayout),
		})
	}

	writeJSON(w, http.StatusOK, availableResponse{Quizzes: items})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
