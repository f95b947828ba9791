package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"study-assistant/internal/auth"
	"study-assistant/internal/backend"
	"study-assistant/internal/localstore"
	"study-assistant/internal/quiz"
	"study-assistant/internal/session"
)

const (
	defaultServer       = "http://127.0.0.1:5000"
	defaultHTTPTimeout  = 60 * time.Second
	defaultHistoryLimit = 10
)

type Config struct {
	ServerURL     string
	HTTPTimeout   time.Duration
	DatabasePath  string
	Token         string
	TickInterval  time.Duration
	SubmitTimeout time.Duration
	Logger        *log.Logger
}

type app struct {
	serverURL string
	reader    *bufio.Reader
	term      *terminal
	tokens    *auth.Store
	client    *backend.Client
	store     *localstore.SQLiteStore
	session   *session.Session
}

// Run drives a quiz session from line commands on in until quit or EOF.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	store, err := localstore.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close()

	tokens := auth.NewStore(store)
	if err := tokens.Load(ctx); err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		if err := tokens.Login(ctx, token); err != nil {
			return fmt.Errorf("configured token: %w", err)
		}
	}

	reader := bufio.NewReader(in)
	term := newTerminal(reader, out)
	client := backend.NewClient(serverURL, &http.Client{Timeout: timeout}, tokens)

	sess, err := session.New(session.Config{
		Backend:       client,
		Auth:          tokens,
		Renderer:      term,
		History:       store,
		Logger:        logger,
		TickInterval:  cfg.TickInterval,
		SubmitTimeout: cfg.SubmitTimeout,
	})
	if err != nil {
		return err
	}
	defer sess.Reset()

	a := &app{
		serverURL: client.BaseURL(),
		reader:    reader,
		term:      term,
		tokens:    tokens,
		client:    client,
		store:     store,
		session:   sess,
	}
	return a.loop(ctx)
}

func (a *app) loop(ctx context.Context) error {
	out := a.term

	loggedIn := "no"
	if a.tokens.Authenticated() {
		loggedIn = "yes"
	}
	fmt.Fprintf(out, "study-assistant quiz\nserver=%s\nlogged in=%s\n\n", a.serverURL, loggedIn)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "quit":
			return nil
		case "login":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: login <token>")
				continue
			}
			if err := a.tokens.Login(ctx, args[1]); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "Logged in.")
		case "logout":
			if err := a.tokens.Logout(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "Logged out.")
		case "generate":
			params, err := a.promptParams()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			a.session.Dispatch(ctx, session.Event{Kind: session.EventGenerate, Params: params})
		case "start":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventStart})
		case "show":
			a.show()
		case "answer":
			a.answer(ctx, args)
		case "next":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventNext})
		case "prev", "previous":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventPrevious})
		case "goto":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: goto <question>")
				continue
			}
			index, err := parseQuestionNumber(args[1])
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			snapshot := a.session.Dispatch(ctx, session.Event{Kind: session.EventNavigate, QuestionIndex: index})
			if snapshot.State == session.StateInProgress && snapshot.CurrentIndex != index {
				fmt.Fprintf(out, "No question %d; the quiz has %d.\n", index+1, snapshot.QuestionCount)
			}
		case "time":
			snapshot := a.session.Snapshot()
			if snapshot.State != session.StateInProgress {
				fmt.Fprintln(out, "No quiz in progress.")
				continue
			}
			fmt.Fprintf(out, "Time left %s (%s)\n", session.FormatClock(snapshot.Remaining), snapshot.TimerLevel)
		case "submit":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventSubmit})
		case "exit":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventExit})
		case "retake":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventRetake})
		case "new":
			a.session.Dispatch(ctx, session.Event{Kind: session.EventReset})
		case "history":
			limit, parseErr := parsePositiveLimit(args, 1, defaultHistoryLimit)
			if parseErr != nil {
				fmt.Fprintf(out, "invalid history limit: %v\n", parseErr)
				continue
			}
			if err := a.runHistory(ctx, limit); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "stats":
			if err := a.runStats(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "attempts":
			if err := a.runAttempts(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "available":
			if err := a.runAvailable(ctx, strings.Join(args[1:], " ")); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func (a *app) promptParams() (quiz.GenerateParams, error) {
	subject, err := promptLine(a.reader, a.term, "Subject", "")
	if err != nil {
		return quiz.GenerateParams{}, err
	}
	topic, err := promptLine(a.reader, a.term, "Topic", "")
	if err != nil {
		return quiz.GenerateParams{}, err
	}
	difficulty, err := promptLine(a.reader, a.term, "Difficulty (easy/medium/hard)", quiz.DefaultDifficulty)
	if err != nil {
		return quiz.GenerateParams{}, err
	}
	examType, err := promptLine(a.reader, a.term, "Exam type", quiz.DefaultExamType)
	if err != nil {
		return quiz.GenerateParams{}, err
	}
	countText, err := promptLine(a.reader, a.term, "Number of questions", strconv.Itoa(quiz.DefaultNumQuestions))
	if err != nil {
		return quiz.GenerateParams{}, err
	}
	count, err := strconv.Atoi(countText)
	if err != nil {
		return quiz.GenerateParams{}, errors.New("number of questions must be an integer")
	}

	return quiz.GenerateParams{
		Subject:      subject,
		Topic:        topic,
		Difficulty:   difficulty,
		ExamType:     examType,
		NumQuestions: count,
	}, nil
}

// answer accepts "answer B" for the current question or "answer 3 B".
func (a *app) answer(ctx context.Context, args []string) {
	var (
		index  int
		letter string
	)
	switch len(args) {
	case 2:
		index = a.session.Snapshot().CurrentIndex
		letter = args[1]
	case 3:
		parsed, err := parseQuestionNumber(args[1])
		if err != nil {
			fmt.Fprintf(a.term, "error: %v\n", err)
			return
		}
		index = parsed
		letter = args[2]
	default:
		fmt.Fprintln(a.term, "usage: answer <letter> | answer <question> <letter>")
		return
	}
	a.session.Dispatch(ctx, session.Event{Kind: session.EventSelectAnswer, QuestionIndex: index, Option: letter})
}

func (a *app) show() {
	snapshot := a.session.Snapshot()
	switch snapshot.State {
	case session.StateInProgress:
		a.term.ShowQuiz(snapshot)
	case session.StateResults:
		if snapshot.Results != nil {
			a.term.ShowResults(*snapshot.Results)
		}
	case session.StateLoading:
		fmt.Fprintf(a.term, "Quiz %s is waiting to start. Type 'start' to retry or 'new' to discard it.\n", snapshot.QuizID)
	default:
		a.term.ShowSetup()
	}
}

func (a *app) runHistory(ctx context.Context, limit int) error {
	attempts, err := a.store.ListAttempts(ctx, limit)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Fprintln(a.term, "No finished quizzes yet.")
		return nil
	}

	fmt.Fprintln(a.term, "Recent quizzes:")
	for idx, item := range attempts {
		status := "failed"
		if item.Passed {
			status = "passed"
		}
		fmt.Fprintf(a.term, "%d. %s score=%s%% (%d/%d) %s time=%s on %s\n",
			idx+1,
			item.Title,
			formatScore(item.Score),
			item.CorrectAnswers,
			item.TotalQuestions,
			status,
			session.FormatClock(item.TimeTaken),
			item.CompletedAt.Format(time.RFC3339),
		)
	}
	return nil
}

func (a *app) runStats(ctx context.Context) error {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.Attempts == 0 {
		fmt.Fprintln(a.term, "No finished quizzes yet.")
		return nil
	}
	fmt.Fprintf(a.term, "Quizzes taken: %d\nPassed: %d\nAverage score: %.1f%%\nBest score: %.1f%%\n",
		stats.Attempts,
		stats.Passed,
		stats.AverageScore,
		stats.BestScore,
	)
	return nil
}

func (a *app) runAttempts(ctx context.Context) error {
	attempts, err := a.client.ListAttempts(ctx)
	if err != nil {
		return describeClientError(err, a.serverURL)
	}
	if len(attempts) == 0 {
		fmt.Fprintln(a.term, "No attempts on the server.")
		return nil
	}

	fmt.Fprintln(a.term, "Server attempts:")
	for idx, item := range attempts {
		if !item.Completed {
			fmt.Fprintf(a.term, "%d. %s quiz=%s in progress since %s\n", idx+1, item.AttemptID, item.QuizID, item.StartedAt.Format(time.RFC3339))
			continue
		}
		fmt.Fprintf(a.term, "%d. %s quiz=%s score=%s%% (%d/%d)\n",
			idx+1,
			item.AttemptID,
			item.QuizID,
			formatScore(item.Score),
			item.CorrectAnswers,
			item.TotalQuestions,
		)
	}
	return nil
}

func (a *app) runAvailable(ctx context.Context, subject string) error {
	quizzes, err := a.client.ListAvailable(ctx, subject)
	if err != nil {
		return describeClientError(err, a.serverURL)
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(a.term, "No quizzes available.")
		return nil
	}

	fmt.Fprintln(a.term, "Available quizzes:")
	for idx, item := range quizzes {
		fmt.Fprintf(a.term, "%d. %s (%s, %d min)\n", idx+1, item.Title, item.Difficulty, item.TimeLimit)
	}
	return nil
}
