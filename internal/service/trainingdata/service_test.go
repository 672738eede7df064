package trainingdata

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// storeMock implements DatasetStore in memory.
type storeMock struct {
	LoadFunc func() ([]domain.TrainingDataset, error)
	SaveFunc func(datasets []domain.TrainingDataset) error

	mu    sync.Mutex
	saved [][]domain.TrainingDataset
}

func (m *storeMock) Load() ([]domain.TrainingDataset, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return nil, nil
}

func (m *storeMock) Save(datasets []domain.TrainingDataset) error {
	m.mu.Lock()
	m.saved = append(m.saved, datasets)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(datasets)
	}
	return nil
}

func (m *storeMock) Saves() [][]domain.TrainingDataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.TrainingDataset(nil), m.saved...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store *storeMock) *Service {
	t.Helper()
	svc, err := NewService(store, t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_CreatesDefaultDataset(t *testing.T) {
	t.Parallel()

	store := &storeMock{}
	svc := newTestService(t, store)

	datasets := svc.ListDatasets()
	if len(datasets) != 1 {
		t.Fatalf("datasets = %d, want 1", len(datasets))
	}
	if datasets[0].Name != "Default Training Data" {
		t.Errorf("name = %q", datasets[0].Name)
	}
	if len(store.Saves()) != 1 {
		t.Error("default dataset must be persisted immediately")
	}
}

func TestNewService_KeepsExistingDatasets(t *testing.T) {
	t.Parallel()

	existing := domain.TrainingDataset{ID: uuid.New(), Name: "Mine"}
	store := &storeMock{
		LoadFunc: func() ([]domain.TrainingDataset, error) {
			return []domain.TrainingDataset{existing}, nil
		},
	}
	svc := newTestService(t, store)

	datasets := svc.ListDatasets()
	if len(datasets) != 1 || datasets[0].Name != "Mine" {
		t.Errorf("datasets = %+v", datasets)
	}
	if len(store.Saves()) != 0 {
		t.Error("loading must not rewrite the store")
	}
}

func TestCreateAndDeleteDataset(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})

	ds, err := svc.CreateDataset("Verbs", "irregular verbs drills")
	if err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}
	if ds.ID == uuid.Nil {
		t.Error("dataset needs an id")
	}
	if len(svc.ListDatasets()) != 2 {
		t.Fatalf("datasets = %d, want 2", len(svc.ListDatasets()))
	}

	if err := svc.DeleteDataset(ds.ID); err != nil {
		t.Fatalf("DeleteDataset: %v", err)
	}
	if err := svc.DeleteDataset(ds.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestCreateDataset_EmptyName(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	if _, err := svc.CreateDataset("  ", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAddExample(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID

	ex, err := svc.AddExample(AddExampleInput{
		DatasetID:       dsID,
		UserInput:       "How do I say hello?",
		AssistantOutput: "You say 'hola'.",
	})
	if err != nil {
		t.Fatalf("AddExample: %v", err)
	}
	if ex.Category != "general" || ex.Language != "English" {
		t.Errorf("defaults not applied: %+v", ex)
	}
	if ex.IsApproved {
		t.Error("new examples start unapproved")
	}

	ds, err := svc.GetDataset(dsID)
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if ds.ExampleCount() != 1 {
		t.Errorf("example count = %d", ds.ExampleCount())
	}
}

func TestAddExample_FallsBackToFirstDataset(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})

	ex, err := svc.AddExample(AddExampleInput{
		DatasetID:       uuid.New(), // no such dataset
		UserInput:       "q",
		AssistantOutput: "a",
	})
	if err != nil {
		t.Fatalf("AddExample: %v", err)
	}
	if ex == nil {
		t.Fatal("expected example")
	}

	ds, _ := svc.GetDataset(svc.ListDatasets()[0].ID)
	if ds.ExampleCount() != 1 {
		t.Error("example should land in the first dataset")
	}
}

func TestAddExample_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	_, err := svc.AddExample(AddExampleInput{UserInput: "   ", AssistantOutput: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateExample_PartialFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID
	ex, _ := svc.AddExample(AddExampleInput{DatasetID: dsID, UserInput: "q", AssistantOutput: "a"})

	output := "a better answer"
	updated, err := svc.UpdateExample(dsID, ex.ID, UpdateExampleInput{AssistantOutput: &output})
	if err != nil {
		t.Fatalf("UpdateExample: %v", err)
	}
	if updated.AssistantOutput != "a better answer" {
		t.Errorf("output = %q", updated.AssistantOutput)
	}
	if updated.UserInput != "q" {
		t.Errorf("untouched field changed: %q", updated.UserInput)
	}

	_, err = svc.UpdateExample(dsID, uuid.New(), UpdateExampleInput{AssistantOutput: &output})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown example = %v, want ErrNotFound", err)
	}
}

func TestApproveAndRateExample(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID
	ex, _ := svc.AddExample(AddExampleInput{DatasetID: dsID, UserInput: "q", AssistantOutput: "a"})

	if err := svc.ApproveExample(dsID, ex.ID, true); err != nil {
		t.Fatalf("ApproveExample: %v", err)
	}
	stored, err := svc.RateExample(dsID, ex.ID, 99)
	if err != nil {
		t.Fatalf("RateExample: %v", err)
	}
	if stored != 5 {
		t.Errorf("stored rating = %d, want clamp to 5", stored)
	}

	ds, _ := svc.GetDataset(dsID)
	got := ds.Examples[0]
	if !got.IsApproved {
		t.Error("expected approved")
	}
	if got.QualityRating == nil || *got.QualityRating != 5 {
		t.Errorf("rating = %v, want clamp to 5", got.QualityRating)
	}

	stored, err = svc.RateExample(dsID, ex.ID, -3)
	if err != nil {
		t.Fatalf("RateExample: %v", err)
	}
	if stored != 1 {
		t.Errorf("stored rating = %d, want clamp to 1", stored)
	}
	ds, _ = svc.GetDataset(dsID)
	if *ds.Examples[0].QualityRating != 1 {
		t.Errorf("rating = %d, want clamp to 1", *ds.Examples[0].QualityRating)
	}
}

func TestCounts_RecomputedFromExamples(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID
	for i := 0; i < 3; i++ {
		ex, err := svc.AddExample(AddExampleInput{DatasetID: dsID, UserInput: "q", AssistantOutput: "a"})
		if err != nil {
			t.Fatalf("AddExample: %v", err)
		}
		if i < 2 {
			if err := svc.ApproveExample(dsID, ex.ID, true); err != nil {
				t.Fatalf("ApproveExample: %v", err)
			}
		}
	}

	summary := svc.ListDatasets()[0]
	if summary.ExampleCount != 3 {
		t.Errorf("example count = %d, want 3", summary.ExampleCount)
	}
	if summary.ApprovedCount != 2 {
		t.Errorf("approved count = %d, want 2", summary.ApprovedCount)
	}
}

func TestDeleteExample(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID
	ex, _ := svc.AddExample(AddExampleInput{DatasetID: dsID, UserInput: "q", AssistantOutput: "a"})

	if err := svc.DeleteExample(dsID, ex.ID); err != nil {
		t.Fatalf("DeleteExample: %v", err)
	}
	if err := svc.DeleteExample(dsID, ex.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestCollectChat(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})

	svc.CollectChat(context.Background(), "teach me verbs", "sure!", "system prompt", "Spanish")

	ds, _ := svc.GetDataset(svc.ListDatasets()[0].ID)
	if ds.ExampleCount() != 1 {
		t.Fatalf("example count = %d", ds.ExampleCount())
	}
	got := ds.Examples[0]
	if got.Category != "chat" || got.Language != "Spanish" || got.IsApproved {
		t.Errorf("collected example = %+v", got)
	}
}

func TestExport_JSONL(t *testing.T) {
	t.Parallel()

	store := &storeMock{}
	exportDir := t.TempDir()
	svc, err := NewService(store, exportDir, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	dsID := svc.ListDatasets()[0].ID

	_, _ = svc.AddExample(AddExampleInput{DatasetID: dsID, SystemPrompt: "sys", UserInput: "q1", AssistantOutput: "a1", IsApproved: true})
	_, _ = svc.AddExample(AddExampleInput{DatasetID: dsID, UserInput: "q2", AssistantOutput: "a2"}) // unapproved

	path, err := svc.Export(ExportInput{Format: domain.ExportFormatJSONL, OnlyApproved: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Dir(path) != exportDir || !strings.HasSuffix(path, ".jsonl") {
		t.Errorf("path = %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want only the approved example", len(lines))
	}

	var record struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if len(record.Messages) != 3 {
		t.Fatalf("messages = %d, want system+user+assistant", len(record.Messages))
	}
	if record.Messages[0].Role != domain.RoleSystem || record.Messages[2].Content != "a1" {
		t.Errorf("messages = %+v", record.Messages)
	}
}

func TestExport_Alpaca(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID
	_, _ = svc.AddExample(AddExampleInput{DatasetID: dsID, UserInput: "q", AssistantOutput: "a", IsApproved: true})

	path, err := svc.Export(ExportInput{Format: domain.ExportFormatAlpaca, OnlyApproved: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var records []struct {
		Instruction string `json:"instruction"`
		Input       string `json:"input"`
		Output      string `json:"output"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Instruction != "You are a helpful language tutor." {
		t.Errorf("empty system prompt should get the default instruction, got %q", records[0].Instruction)
	}
}

func TestExport_ShareGPT(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	dsID := svc.ListDatasets()[0].ID
	_, _ = svc.AddExample(AddExampleInput{DatasetID: dsID, SystemPrompt: "sys", UserInput: "q", AssistantOutput: "a", IsApproved: true})

	path, err := svc.Export(ExportInput{Format: domain.ExportFormatShareGPT, OnlyApproved: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, _ := os.ReadFile(path)
	var records []struct {
		Conversations []struct {
			From  string `json:"from"`
			Value string `json:"value"`
		} `json:"conversations"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 1 || len(records[0].Conversations) != 3 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Conversations[1].From != "human" || records[0].Conversations[2].From != "gpt" {
		t.Errorf("conversation roles = %+v", records[0].Conversations)
	}
}

func TestExport_NoExamples(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	_, err := svc.Export(ExportInput{OnlyApproved: true})
	if !errors.Is(err, domain.ErrNoExamples) {
		t.Fatalf("err = %v, want ErrNoExamples", err)
	}
}

func TestExport_UnknownDataset(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	id := uuid.New()
	_, err := svc.Export(ExportInput{DatasetID: &id})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestExport_BadFormat(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &storeMock{})
	_, err := svc.Export(ExportInput{Format: domain.ExportFormat("csv")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
