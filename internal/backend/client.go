package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"study-assistant/internal/auth"
	"study-assistant/internal/quiz"
)

const defaultBaseURL = "http://127.0.0.1:5000"

var ErrServiceUnavailable = errors.New("quiz backend unavailable")

// APIError is a non-2xx answer from the backend. Message holds the body's
// "error" field and is empty when the body had none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// TokenSource supplies the bearer token. ok is false when no usable token is held.
type TokenSource interface {
	Token() (token string, ok bool)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     tokens,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) GenerateQuiz(ctx context.Context, params quiz.GenerateParams) (quiz.Quiz, error) {
	token, err := c.requireToken()
	if err != nil {
		return quiz.Quiz{}, err
	}

	var payload quizResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/quiz/generate", token, params, &payload); err != nil {
		return quiz.Quiz{}, err
	}
	if strings.TrimSpace(payload.Quiz.ID) == "" {
		return quiz.Quiz{}, errors.New("backend returned a quiz without id")
	}
	return payload.Quiz, nil
}

func (c *Client) StartAttempt(ctx context.Context, quizID string) (string, error) {
	if strings.TrimSpace(quizID) == "" {
		return "", errors.New("quiz id is required")
	}
	token, err := c.requireToken()
	if err != nil {
		return "", err
	}

	var payload startResponse
	path := "/api/quiz/start/" + url.PathEscape(quizID)
	if err := c.doJSON(ctx, http.MethodPost, path, token, nil, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.AttemptID) == "" {
		return "", errors.New("backend returned no attempt_id")
	}
	return payload.AttemptID, nil
}

func (c *Client) GetQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	if strings.TrimSpace(quizID) == "" {
		return quiz.Quiz{}, errors.New("quiz id is required")
	}

	var payload quizResponse
	path := "/api/quiz/" + url.PathEscape(quizID)
	if err := c.doJSON(ctx, http.MethodGet, path, c.optionalToken(), nil, &payload); err != nil {
		return quiz.Quiz{}, err
	}
	return payload.Quiz, nil
}

func (c *Client) SubmitAttempt(ctx context.Context, attemptID string, answers quiz.AnswerSet, timeTaken int) (quiz.Results, error) {
	if strings.TrimSpace(attemptID) == "" {
		return quiz.Results{}, errors.New("attempt id is required")
	}
	token, err := c.requireToken()
	if err != nil {
		return quiz.Results{}, err
	}
	if answers == nil {
		answers = quiz.AnswerSet{}
	}
	if timeTaken < 0 {
		timeTaken = 0
	}

	request := submitRequest{
		Answers:   answers,
		TimeTaken: timeTaken,
	}

	var results quiz.Results
	path := "/api/quiz/submit/" + url.PathEscape(attemptID)
	if err := c.doJSON(ctx, http.MethodPost, path, token, request, &results); err != nil {
		return quiz.Results{}, err
	}
	return results, nil
}

func (c *Client) ListAttempts(ctx context.Context) ([]quiz.AttemptSummary, error) {
	var payload attemptsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/attempts", c.optionalToken(), nil, &payload); err != nil {
		return nil, err
	}

	attempts := make([]quiz.AttemptSummary, 0, len(payload.Attempts))
	for _, item := range payload.Attempts {
		startedAt, err := parseTime(item.StartedAt)
		if err != nil {
			return nil, err
		}
		completedAt, err := parseTime(item.CompletedAt)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, quiz.AttemptSummary{
			AttemptID:      item.ID,
			QuizID:         item.QuizID,
			Score:          item.Score,
			CorrectAnswers: item.CorrectAnswers,
			TotalQuestions: item.TotalQuestions,
			Passed:         item.Passed,
			Completed:      item.Completed,
			TimeTaken:      item.TimeTaken,
			StartedAt:      startedAt,
			CompletedAt:    completedAt,
		})
	}
	return attempts, nil
}

func (c *Client) ListAvailable(ctx context.Context, subject string) ([]quiz.Quiz, error) {
	path := "/api/quiz/available"
	if trimmed := strings.TrimSpace(subject); trimmed != "" {
		query := url.Values{}
		query.Set("subject", trimmed)
		path += "?" + query.Encode()
	}

	var payload availableResponse
	if err := c.doJSON(ctx, http.MethodGet, path, c.optionalToken(), nil, &payload); err != nil {
		return nil, err
	}

	quizzes := make([]quiz.Quiz, 0, len(payload.Quizzes))
	for _, item := range payload.Quizzes {
		quizzes = append(quizzes, quiz.Quiz{
			ID:           item.ID,
			Title:        item.Title,
			Subject:      item.Subject,
			Topic:        item.Topic,
			Difficulty:   item.Difficulty,
			TimeLimit:    item.TimeLimit,
			PassingScore: item.PassingScore,
			CreatedAt:    item.CreatedAt,
		})
	}
	return quizzes, nil
}

func (c *Client) requireToken() (string, error) {
	if c.tokens == nil {
		return "", auth.ErrNotAuthenticated
	}
	token, ok := c.tokens.Token()
	if !ok {
		return "", auth.ErrNotAuthenticated
	}
	return token, nil
}

func (c *Client) optionalToken() string {
	if c.tokens == nil {
		return ""
	}
	token, _ := c.tokens.Token()
	return token
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil || method == http.MethodPost {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
