package services

import (
	"context"
	"datachat-ai/config"
	"datachat-ai/internal/apis/dtos"
	"datachat-ai/internal/constants"
	"datachat-ai/internal/models"
	"datachat-ai/internal/repositories"
	"datachat-ai/pkg/llm"
	"datachat-ai/pkg/queryengine"
	"datachat-ai/pkg/tabular"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const unavailableAnswer = "The language model is currently unavailable. Please try again in a moment."

type ChatService interface {
	CreateSession(req *dtos.CreateSessionRequest) (*dtos.SessionResponse, uint32, error)
	GetSession(sessionID string) (*dtos.SessionResponse, uint32, error)
	ListSessions(page, pageSize int) (*dtos.SessionListResponse, uint32, error)
	DeleteSession(sessionID string) (uint32, error)
	ListMessages(sessionID string, page, pageSize int) (*dtos.MessageListResponse, uint32, error)
	Answer(ctx context.Context, sessionID, question string) (*dtos.AnswerResponse, uint32, error)
}

type chatService struct {
	sessionRepo repositories.SessionRepository
	datasets    DatasetService
	llmManager  *llm.Manager
	style       StyleConstraints

	// one question at a time per session, so history stays coherent
	sessionLocks map[string]*sync.Mutex
	locksMu      sync.Mutex
}

func NewChatService(sessionRepo repositories.SessionRepository, datasets DatasetService, llmManager *llm.Manager) ChatService {
	return &chatService{
		sessionRepo:  sessionRepo,
		datasets:     datasets,
		llmManager:   llmManager,
		style:        DefaultStyleConstraints(),
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

func (s *chatService) CreateSession(req *dtos.CreateSessionRequest) (*dtos.SessionResponse, uint32, error) {
	if _, err := s.datasets.Get(req.DatasetName); err != nil {
		return nil, http.StatusNotFound, err
	}

	mode := req.Mode
	if mode == "" {
		mode = constants.SessionModeStructured
	}

	session := models.NewSession(req.DatasetName, mode)
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to create session: %v", err)
	}

	log.Printf("CreateSession -> session %s on dataset %s (%s mode)", session.ID.Hex(), session.DatasetName, mode)
	resp := toSessionResponse(session)
	return &resp, http.StatusOK, nil
}

func (s *chatService) GetSession(sessionID string) (*dtos.SessionResponse, uint32, error) {
	session, status, err := s.findSession(sessionID)
	if err != nil {
		return nil, status, err
	}
	resp := toSessionResponse(session)
	return &resp, http.StatusOK, nil
}

func (s *chatService) ListSessions(page, pageSize int) (*dtos.SessionListResponse, uint32, error) {
	sessions, total, err := s.sessionRepo.List(page, pageSize)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to list sessions: %v", err)
	}

	resp := &dtos.SessionListResponse{Sessions: make([]dtos.SessionResponse, 0, len(sessions)), Total: total}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(session))
	}
	return resp, http.StatusOK, nil
}

func (s *chatService) DeleteSession(sessionID string) (uint32, error) {
	session, status, err := s.findSession(sessionID)
	if err != nil {
		return status, err
	}

	if err := s.sessionRepo.DeleteMessages(session.ID); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to delete messages: %v", err)
	}
	if err := s.sessionRepo.Delete(session.ID); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to delete session: %v", err)
	}
	return http.StatusOK, nil
}

func (s *chatService) ListMessages(sessionID string, page, pageSize int) (*dtos.MessageListResponse, uint32, error) {
	session, status, err := s.findSession(sessionID)
	if err != nil {
		return nil, status, err
	}

	messages, total, err := s.sessionRepo.FindMessagesBySession(session.ID, page, pageSize)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to list messages: %v", err)
	}

	resp := &dtos.MessageListResponse{Messages: make([]dtos.MessageResponse, 0, len(messages)), Total: total}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toMessageResponse(msg))
	}
	return resp, http.StatusOK, nil
}

// Answer runs one question through the pipeline: plan, execute or
// retrieve, summarize. Every question moves through the states
// received, planning, executing or retrieving, summarizing, and ends
// answered or failed; the final state is stored on the assistant message.
func (s *chatService) Answer(ctx context.Context, sessionID, question string) (*dtos.AnswerResponse, uint32, error) {
	session, status, err := s.findSession(sessionID)
	if err != nil {
		return nil, status, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ds, err := s.datasets.Get(session.DatasetName)
	if err != nil {
		return nil, http.StatusNotFound, err
	}

	log.Printf("Answer -> session %s state %s: %q", sessionID, constants.StateReceived, question)

	history, err := s.recentHistory(session.ID)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	userMsg := models.NewMessage(session.ID, "user", question, constants.StateReceived)
	if err := s.sessionRepo.CreateMessage(userMsg); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to persist question: %v", err)
	}

	client, err := s.llmManager.GetClient(config.Env.DefaultLLMClient)
	if err != nil {
		return s.finish(session.ID, unavailableAnswer, nil, constants.StateFailed)
	}

	var answer dtos.AnswerResponse
	if session.Mode == constants.SessionModeRetrieval {
		answer = s.answerByRetrieval(ctx, client, session, history, question)
	} else {
		answer = s.answerByQuery(ctx, client, history, question, ds)
	}

	return s.finish(session.ID, answer.Answer, answer.ResultPreview, answer.State)
}

// answerByQuery is the structured path: plan a query over the schema,
// execute it, summarize the result. Planner output that is conversational,
// malformed, or fails column or type checks degrades to a direct
// conversational answer instead of erroring out.
func (s *chatService) answerByQuery(ctx context.Context, client llm.Client, history []llm.Message, question string, ds *tabular.Dataset) dtos.AnswerResponse {
	log.Printf("answerByQuery -> state %s", constants.StatePlanning)
	raw, err := s.generate(ctx, client, plannerRequest(ds.Schema(), history, question))
	if err != nil {
		return s.transportFailure(err)
	}

	outcome, err := queryengine.ParsePlannerOutput(raw)
	if err != nil {
		log.Printf("answerByQuery -> planner output rejected: %v", err)
		return s.answerConversationally(ctx, client, history, question, "the question could not be translated into a valid query")
	}
	if outcome.Conversational {
		return s.answerConversationally(ctx, client, history, question, "")
	}

	log.Printf("answerByQuery -> state %s", constants.StateExecuting)
	result := queryengine.Execute(outcome.Query, ds)
	if result.Kind == queryengine.ResultFailure {
		log.Printf("answerByQuery -> execution failed (%s): %s", result.Failure.Kind, result.Failure.Message)
		return s.answerConversationally(ctx, client, history, question, result.Failure.Message)
	}

	preview := queryengine.RenderPreview(result, config.Env.PreviewRows)

	log.Printf("answerByQuery -> state %s", constants.StateSummarizing)
	summary, err := s.generate(ctx, client, summarizerRequest(s.style, question, preview))
	if err != nil {
		return s.transportFailure(err)
	}

	return dtos.AnswerResponse{Answer: summary, ResultPreview: &preview, State: constants.StateAnswered}
}

// answerByRetrieval is the index path: embed the question, take the
// closest rows, answer from those
func (s *chatService) answerByRetrieval(ctx context.Context, client llm.Client, session *models.Session, history []llm.Message, question string) dtos.AnswerResponse {
	log.Printf("answerByRetrieval -> state %s", constants.StateRetrieving)
	idx, err := s.datasets.Index(ctx, session.DatasetName)
	if err != nil {
		log.Printf("answerByRetrieval -> index unavailable: %v", err)
		return dtos.AnswerResponse{Answer: unavailableAnswer, State: constants.StateFailed}
	}

	matches, err := idx.Search(ctx, question, config.Env.RetrieverTopK)
	if err != nil {
		log.Printf("answerByRetrieval -> search failed: %v", err)
		return dtos.AnswerResponse{Answer: unavailableAnswer, State: constants.StateFailed}
	}

	documents := make([]string, 0, len(matches))
	for _, match := range matches {
		documents = append(documents, match.Document.Text)
	}

	log.Printf("answerByRetrieval -> state %s (%d rows)", constants.StateSummarizing, len(documents))
	summary, err := s.generate(ctx, client, retrievalRequest(s.style, question, documents))
	if err != nil {
		return s.transportFailure(err)
	}
	return dtos.AnswerResponse{Answer: summary, State: constants.StateAnswered}
}

// answerConversationally handles greetings, off-topic questions, and the
// degraded path when a data question could not be answered. No result
// preview is produced on this path.
func (s *chatService) answerConversationally(ctx context.Context, client llm.Client, history []llm.Message, question, failureNote string) dtos.AnswerResponse {
	reply, err := s.generate(ctx, client, conversationalRequest(history, question, failureNote))
	if err != nil {
		return s.transportFailure(err)
	}
	return dtos.AnswerResponse{Answer: reply, State: constants.StateAnswered}
}

func (s *chatService) transportFailure(err error) dtos.AnswerResponse {
	log.Printf("transportFailure -> %v", err)
	if errors.Is(err, llm.ErrModelTimeout) {
		return dtos.AnswerResponse{Answer: "The request to the language model timed out. Please try again.", State: constants.StateFailed}
	}
	return dtos.AnswerResponse{Answer: unavailableAnswer, State: constants.StateFailed}
}

// generate wraps a model call with the configured timeout
func (s *chatService) generate(ctx context.Context, client llm.Client, req llm.CompletionRequest) (string, error) {
	timeout := time.Duration(config.Env.LLMTimeoutSecs) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.GenerateResponse(callCtx, req)
}

// finish persists the assistant turn and shapes the API response
func (s *chatService) finish(sessionID primitive.ObjectID, answer string, preview *string, state string) (*dtos.AnswerResponse, uint32, error) {
	assistantMsg := models.NewMessage(sessionID, "assistant", answer, state)
	assistantMsg.ResultPreview = preview
	if err := s.sessionRepo.CreateMessage(assistantMsg); err != nil {
		log.Printf("finish -> failed to persist answer: %v", err)
	}
	return &dtos.AnswerResponse{Answer: answer, ResultPreview: preview, State: state}, http.StatusOK, nil
}

// recentHistory returns the trailing conversation window supplied to the
// planner. The window counts stored messages, oldest first.
func (s *chatService) recentHistory(sessionID primitive.ObjectID) ([]llm.Message, error) {
	messages, err := s.sessionRepo.FindLatestMessagesBySession(sessionID, config.Env.HistoryWindow*2)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %v", err)
	}
	return toHistory(messages), nil
}

func (s *chatService) findSession(sessionID string) (*models.Session, uint32, error) {
	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid session id: %s", sessionID)
	}

	session, err := s.sessionRepo.FindByID(id)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to load session: %v", err)
	}
	if session == nil {
		return nil, http.StatusNotFound, fmt.Errorf("session not found: %s", sessionID)
	}
	return session, http.StatusOK, nil
}

func (s *chatService) sessionLock(sessionID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[sessionID] = lock
	}
	return lock
}

func toSessionResponse(session *models.Session) dtos.SessionResponse {
	return dtos.SessionResponse{
		ID:          session.ID.Hex(),
		DatasetName: session.DatasetName,
		Mode:        session.Mode,
		CreatedAt:   session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   session.UpdatedAt.Format(time.RFC3339),
	}
}

func toMessageResponse(msg *models.Message) dtos.MessageResponse {
	return dtos.MessageResponse{
		ID:            msg.ID.Hex(),
		SessionID:     msg.SessionID.Hex(),
		Role:          msg.Role,
		Content:       msg.Content,
		ResultPreview: msg.ResultPreview,
		State:         msg.State,
		CreatedAt:     msg.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     msg.UpdatedAt.Format(time.RFC3339),
	}
}
