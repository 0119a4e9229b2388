package services

import (
	"context"
	"datachat-ai/config"
	"datachat-ai/internal/apis/dtos"
	"datachat-ai/internal/constants"
	"datachat-ai/internal/models"
	"datachat-ai/pkg/llm"
	"datachat-ai/pkg/retriever"
	"datachat-ai/pkg/tabular"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeLLMClient routes requests by their shape: planner calls carry
// ForceJSON, summarizer calls use the analyst system prompt, anything
// else is conversational. Prompts are recorded for assertions.
type fakeLLMClient struct {
	plannerOutput        string
	summarizerOutput     string
	conversationalOutput string
	err                  error

	mu      sync.Mutex
	prompts []string
}

func (c *fakeLLMClient) GenerateResponse(ctx context.Context, req llm.CompletionRequest) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, req.Prompt)
	c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}
	if req.ForceJSON {
		return c.plannerOutput, nil
	}
	if strings.Contains(req.SystemPrompt, "data analyst") {
		return c.summarizerOutput, nil
	}
	return c.conversationalOutput, nil
}

func (c *fakeLLMClient) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "fake-model", Provider: "fake"}
}

func (c *fakeLLMClient) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

// memorySessionRepository is an in-memory stand-in for the Mongo-backed
// repository
type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*models.Session
	messages []*models.Message
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: make(map[primitive.ObjectID]*models.Session)}
}

func (r *memorySessionRepository) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *memorySessionRepository) Update(id primitive.ObjectID, session *models.Session) error {
	return r.Create(session)
}

func (r *memorySessionRepository) Delete(id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepository) FindByID(id primitive.ObjectID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id], nil
}

func (r *memorySessionRepository) List(page, pageSize int) ([]*models.Session, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions, int64(len(sessions)), nil
}

func (r *memorySessionRepository) CreateMessage(message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *memorySessionRepository) UpdateMessage(id primitive.ObjectID, message *models.Message) error {
	return nil
}

func (r *memorySessionRepository) DeleteMessages(sessionID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *memorySessionRepository) FindMessagesBySession(sessionID primitive.ObjectID, page, pageSize int) ([]*models.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*models.Message
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			found = append(found, m)
		}
	}
	return found, int64(len(found)), nil
}

func (r *memorySessionRepository) FindLatestMessagesBySession(sessionID primitive.ObjectID, limit int) ([]*models.Message, error) {
	all, _, _ := r.FindMessagesBySession(sessionID, 1, 0)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// stubDatasetService serves a single fixed dataset
type stubDatasetService struct {
	ds    *tabular.Dataset
	index *retriever.Index
}

func (s *stubDatasetService) Upload(ctx context.Context, filename string, reader io.Reader, declaredNumeric []string) (*dtos.DatasetResponse, uint32, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubDatasetService) Get(name string) (*tabular.Dataset, error) {
	if name != s.ds.Name {
		return nil, fmt.Errorf("dataset not found: %s", name)
	}
	return s.ds, nil
}

func (s *stubDatasetService) List() (*dtos.DatasetListResponse, uint32, error) {
	return &dtos.DatasetListResponse{}, 200, nil
}

func (s *stubDatasetService) Delete(name string) (uint32, error) { return 200, nil }

func (s *stubDatasetService) Index(ctx context.Context, name string) (*retriever.Index, error) {
	if s.index == nil {
		return nil, errors.New("no index")
	}
	return s.index, nil
}

func salesDataset(t *testing.T) *tabular.Dataset {
	t.Helper()
	ds, err := tabular.NewDataset("sales", []*tabular.Column{
		{Name: "product", Kind: tabular.KindText, Texts: []string{"milk", "milk", "bread"}},
		{Name: "store_id", Kind: tabular.KindText, Texts: []string{"str001", "str002", "str001"}},
		{Name: "liters", Kind: tabular.KindNumeric, Nums: []float64{5, 0, 2}},
	})
	require.NoError(t, err)
	return ds.Normalize()
}

func newTestChatService(t *testing.T, client llm.Client, mode string) (ChatService, *memorySessionRepository, string) {
	t.Helper()
	config.Env.DefaultLLMClient = "fake"
	config.Env.HistoryWindow = constants.DefaultHistoryWindow
	config.Env.RetrieverTopK = constants.DefaultRetrieverTopK
	config.Env.PreviewRows = constants.DefaultPreviewRows
	config.Env.MaxSentences = constants.DefaultMaxSentences
	config.Env.LLMTimeoutSecs = 5

	manager := llm.NewManager()
	manager.AddClient("fake", client)

	repo := newMemorySessionRepository()
	datasets := &stubDatasetService{ds: salesDataset(t)}
	svc := NewChatService(repo, datasets, manager)

	session, status, err := svc.CreateSession(&dtos.CreateSessionRequest{DatasetName: "sales", Mode: mode})
	require.NoError(t, err)
	require.EqualValues(t, 200, status)
	return svc, repo, session.ID
}

func TestAnswerFilteredAggregate(t *testing.T) {
	client := &fakeLLMClient{
		plannerOutput: `{"intent":"query","query":{"filter":[{"column":"product","op":"eq","value":"milk"},{"column":"store_id","op":"eq","value":"str001"}],"aggregate":{"op":"sum","column":"liters"}}}`,
		summarizerOutput: "A total of 5 liters of milk were sold in store str001.",
	}
	svc, repo, sessionID := newTestChatService(t, client, "")

	answer, status, err := svc.Answer(context.Background(), sessionID, "How many liters of milk were sold in store str001?")
	require.NoError(t, err)
	assert.EqualValues(t, 200, status)
	assert.Equal(t, constants.StateAnswered, answer.State)
	assert.Contains(t, answer.Answer, "5")
	require.NotNil(t, answer.ResultPreview)
	assert.Equal(t, "5", *answer.ResultPreview)

	// the summarizer saw the computed result, not the raw rows
	assert.Contains(t, client.lastPrompt(), "Computed result:\n5")

	// both turns were persisted
	messages, _, err := repo.FindMessagesBySession(mustObjectID(t, sessionID), 1, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, constants.StateAnswered, messages[1].State)
}

func TestAnswerConversational(t *testing.T) {
	client := &fakeLLMClient{
		plannerOutput:        `{"intent":"conversation"}`,
		conversationalOutput: "Hello! Ask anything about the sales data.",
	}
	svc, _, sessionID := newTestChatService(t, client, "")

	answer, _, err := svc.Answer(context.Background(), sessionID, "Hi there!")
	require.NoError(t, err)
	assert.Equal(t, constants.StateAnswered, answer.State)
	assert.Equal(t, "Hello! Ask anything about the sales data.", answer.Answer)
	assert.Nil(t, answer.ResultPreview)
}

func TestAnswerUnknownColumnDegrades(t *testing.T) {
	client := &fakeLLMClient{
		plannerOutput:        `{"intent":"query","query":{"aggregate":{"op":"sum","column":"discount"}}}`,
		conversationalOutput: "There is no discount field in this dataset; try asking about liters instead.",
	}
	svc, _, sessionID := newTestChatService(t, client, "")

	answer, _, err := svc.Answer(context.Background(), sessionID, "What was the total discount?")
	require.NoError(t, err)
	assert.Equal(t, constants.StateAnswered, answer.State)
	assert.Contains(t, answer.Answer, "no discount field")
	assert.Nil(t, answer.ResultPreview)

	// the fallback prompt names the missing column
	assert.Contains(t, client.lastPrompt(), "discount")
}

func TestAnswerMalformedPlannerOutputDegrades(t *testing.T) {
	client := &fakeLLMClient{
		plannerOutput:        `{"intent":"query","query":{"eval":"df.sum()"}}`,
		conversationalOutput: "That question could not be answered from the dataset.",
	}
	svc, _, sessionID := newTestChatService(t, client, "")

	answer, _, err := svc.Answer(context.Background(), sessionID, "Sum everything somehow")
	require.NoError(t, err)
	assert.Equal(t, constants.StateAnswered, answer.State)
	assert.Nil(t, answer.ResultPreview)
}

func TestAnswerModelTimeout(t *testing.T) {
	client := &fakeLLMClient{err: fmt.Errorf("%w: deadline exceeded", llm.ErrModelTimeout)}
	svc, repo, sessionID := newTestChatService(t, client, "")

	answer, status, err := svc.Answer(context.Background(), sessionID, "How many liters of milk were sold?")
	require.NoError(t, err)
	assert.EqualValues(t, 200, status)
	assert.Equal(t, constants.StateFailed, answer.State)
	assert.Contains(t, answer.Answer, "timed out")

	messages, _, err := repo.FindMessagesBySession(mustObjectID(t, sessionID), 1, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, constants.StateFailed, messages[1].State)
}

func TestAnswerSessionNotFound(t *testing.T) {
	client := &fakeLLMClient{}
	svc, _, _ := newTestChatService(t, client, "")

	_, status, err := svc.Answer(context.Background(), primitive.NewObjectID().Hex(), "anything")
	assert.Error(t, err)
	assert.EqualValues(t, 404, status)
}

func TestAnswerHistoryWindow(t *testing.T) {
	client := &fakeLLMClient{
		plannerOutput:        `{"intent":"conversation"}`,
		conversationalOutput: "ok",
	}
	svc, repo, sessionID := newTestChatService(t, client, "")

	// pre-seed more turns than the window holds
	id := mustObjectID(t, sessionID)
	for i := 0; i < 20; i++ {
		require.NoError(t, repo.CreateMessage(models.NewMessage(id, "user", fmt.Sprintf("question %d", i), constants.StateAnswered)))
	}

	_, _, err := svc.Answer(context.Background(), sessionID, "and for the other store?")
	require.NoError(t, err)

	window, err := repo.FindLatestMessagesBySession(id, config.Env.HistoryWindow*2)
	require.NoError(t, err)
	assert.Len(t, window, config.Env.HistoryWindow*2)
}

func TestCreateSessionUnknownDataset(t *testing.T) {
	client := &fakeLLMClient{}
	svc, _, _ := newTestChatService(t, client, "")

	_, status, err := svc.CreateSession(&dtos.CreateSessionRequest{DatasetName: "missing"})
	assert.Error(t, err)
	assert.EqualValues(t, 404, status)
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	client := &fakeLLMClient{
		plannerOutput:        `{"intent":"conversation"}`,
		conversationalOutput: "ok",
	}
	svc, repo, sessionID := newTestChatService(t, client, "")

	_, _, err := svc.Answer(context.Background(), sessionID, "hello")
	require.NoError(t, err)

	status, err := svc.DeleteSession(sessionID)
	require.NoError(t, err)
	assert.EqualValues(t, 200, status)

	messages, total, err := repo.FindMessagesBySession(mustObjectID(t, sessionID), 1, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, messages)
}

func TestAnswerRetrievalMode(t *testing.T) {
	config.Env.DefaultLLMClient = "fake"
	config.Env.HistoryWindow = constants.DefaultHistoryWindow
	config.Env.RetrieverTopK = 2
	config.Env.LLMTimeoutSecs = 5

	client := &fakeLLMClient{summarizerOutput: "Store str001 sold 5 liters of milk."}
	manager := llm.NewManager()
	manager.AddClient("fake", client)

	ds := salesDataset(t)
	index, err := retriever.BuildIndex(context.Background(), unitEmbedder{}, retriever.RenderDocuments(ds))
	require.NoError(t, err)

	repo := newMemorySessionRepository()
	svc := NewChatService(repo, &stubDatasetService{ds: ds, index: index}, manager)

	session, _, err := svc.CreateSession(&dtos.CreateSessionRequest{DatasetName: "sales", Mode: constants.SessionModeRetrieval})
	require.NoError(t, err)

	answer, _, err := svc.Answer(context.Background(), session.ID, "How much milk did str001 sell?")
	require.NoError(t, err)
	assert.Equal(t, constants.StateAnswered, answer.State)
	assert.Contains(t, answer.Answer, "str001")
	assert.Nil(t, answer.ResultPreview)

	// the prompt was grounded in retrieved rows, capped at top-k
	prompt := client.lastPrompt()
	assert.Contains(t, prompt, "Most relevant rows")
	assert.Equal(t, 2, strings.Count(prompt, "\n- "))
}

func mustObjectID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
