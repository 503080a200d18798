package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telebot/internal/config"
	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/domain/services"
	"telebot/internal/repository/memory"
)

type stubResolver struct {
	resp     *models.AIChatResponse
	err      error
	received *models.AIChatRequest
}

func (s *stubResolver) Resolve(_ context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	s.received = req
	return s.resp, s.err
}

func (s *stubResolver) Strategies() []string { return []string{"stub"} }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(&memory.Config{Logger: testLogger()})
	require.NoError(t, store.Init())
	return store
}

func strPtr(s string) *string { return &s }

func TestCreateProject(t *testing.T) {
	svc := NewProjectService(newStore(t), testLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     services.CreateProjectRequest
		wantErr bool
	}{
		{name: "minimal", req: services.CreateProjectRequest{Name: "bot"}},
		{name: "with files", req: services.CreateProjectRequest{Name: "bot", Files: map[string]string{"bot.py": "x"}}},
		{name: "empty description", req: services.CreateProjectRequest{Name: "bot", Description: strPtr("")}},
		{name: "blank name", req: services.CreateProjectRequest{Name: "  "}, wantErr: true},
		{name: "long name", req: services.CreateProjectRequest{Name: strings.Repeat("a", config.MaxProjectNameLength+1)}, wantErr: true},
		{name: "path in filename", req: services.CreateProjectRequest{Name: "bot", Files: map[string]string{"a/b.py": "x"}}, wantErr: true},
		{name: "dot filename", req: services.CreateProjectRequest{Name: "bot", Files: map[string]string{"..": "x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := svc.CreateProject(ctx, &tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, project.ID)
			assert.NotNil(t, project.Files)
			assert.Nil(t, project.Description)
		})
	}
}

func TestCreateProject_TrimsName(t *testing.T) {
	svc := NewProjectService(newStore(t), testLogger())

	project, err := svc.CreateProject(context.Background(), &services.CreateProjectRequest{Name: "  weather-bot  "})
	require.NoError(t, err)
	assert.Equal(t, "weather-bot", project.Name)
}

func TestUpdateProject_Validation(t *testing.T) {
	svc := NewProjectService(newStore(t), testLogger())
	ctx := context.Background()

	_, err := svc.UpdateProject(ctx, models.DefaultProjectID, &services.UpdateProjectRequest{Name: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateProject(ctx, "missing", &services.UpdateProjectRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	project, err := svc.UpdateProject(ctx, models.DefaultProjectID, &services.UpdateProjectRequest{ClearDescription: true})
	require.NoError(t, err)
	assert.Nil(t, project.Description)
}

func TestDeleteProject_NotFound(t *testing.T) {
	svc := NewProjectService(newStore(t), testLogger())
	err := svc.DeleteProject(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyFilePatch(t *testing.T) {
	store := newStore(t)
	svc := NewProjectService(store, testLogger())
	ctx := context.Background()

	before, err := svc.GetProject(ctx, models.DefaultProjectID)
	require.NoError(t, err)

	project, err := svc.ApplyFilePatch(ctx, models.DefaultProjectID, map[string]string{
		"bot.py":      "# rewritten",
		"database.py": "import sqlite3",
	})
	require.NoError(t, err)

	assert.Equal(t, "# rewritten", project.Files["bot.py"])
	assert.Equal(t, "import sqlite3", project.Files["database.py"])
	assert.Len(t, project.Files, len(before.Files)+1)

	_, err = svc.ApplyFilePatch(ctx, models.DefaultProjectID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.ApplyFilePatch(ctx, "missing", map[string]string{"a.py": "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendMessage_PassesHistoryAndContext(t *testing.T) {
	store := newStore(t)
	projects := NewProjectService(store, testLogger())
	resolver := &stubResolver{resp: &models.AIChatResponse{Message: "ok"}}
	svc := NewChatService(store, store, projects, resolver, config.PatchModeAdvisory, testLogger())
	ctx := context.Background()

	_, err := svc.CreateMessage(ctx, models.DefaultProjectID, &services.CreateMessageRequest{Role: "user", Content: "первое"})
	require.NoError(t, err)
	_, err = svc.CreateMessage(ctx, models.DefaultProjectID, &services.CreateMessageRequest{Role: "assistant", Content: "ответ"})
	require.NoError(t, err)

	result, err := svc.SendMessage(ctx, models.DefaultProjectID, &services.SendMessageRequest{Content: "второе"})
	require.NoError(t, err)

	require.NotNil(t, resolver.received)
	assert.Equal(t, []models.ConversationMessage{
		{Role: "user", Content: "первое"},
		{Role: "assistant", Content: "ответ"},
		{Role: "user", Content: "второе"},
	}, resolver.received.Messages)
	assert.Contains(t, resolver.received.ProjectContext, "bot.py")

	assert.Equal(t, "ok", result.AssistantMessage.Content)
	assert.NotNil(t, result.Files)
	assert.False(t, result.Applied)
}

func TestSendMessage_ApplyModeRejectedPatchStaysAdvisory(t *testing.T) {
	store := newStore(t)
	projects := NewProjectService(store, testLogger())
	resolver := &stubResolver{resp: &models.AIChatResponse{
		Message: "ok",
		Files:   map[string]string{"bad/name.py": "x"},
	}}
	svc := NewChatService(store, store, projects, resolver, config.PatchModeApply, testLogger())

	result, err := svc.SendMessage(context.Background(), models.DefaultProjectID, &services.SendMessageRequest{Content: "hi"})
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Contains(t, result.Files, "bad/name.py")
}

func TestSendMessage_ResolverFailureKeepsUserMessage(t *testing.T) {
	store := newStore(t)
	projects := NewProjectService(store, testLogger())
	resolver := &stubResolver{err: errors.Join(domain.ErrServiceUnavailable, errors.New("rules broken"))}
	svc := NewChatService(store, store, projects, resolver, config.PatchModeAdvisory, testLogger())
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, models.DefaultProjectID, &services.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)

	messages, err := svc.ListMessages(ctx, models.DefaultProjectID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleUser, messages[0].Role)
}

func TestCreateMessage_Validation(t *testing.T) {
	store := newStore(t)
	svc := NewChatService(store, store, NewProjectService(store, testLogger()), &stubResolver{}, config.PatchModeAdvisory, testLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		req  services.CreateMessageRequest
	}{
		{"missing role", services.CreateMessageRequest{Content: "x"}},
		{"unknown role", services.CreateMessageRequest{Role: "system", Content: "x"}},
		{"empty content", services.CreateMessageRequest{Role: "user"}},
		{"blank content", services.CreateMessageRequest{Role: "user", Content: " \n "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMessage(ctx, models.DefaultProjectID, &tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSendMessage_Validation(t *testing.T) {
	store := newStore(t)
	resolver := &stubResolver{resp: &models.AIChatResponse{Message: "ok"}}
	svc := NewChatService(store, store, NewProjectService(store, testLogger()), resolver, config.PatchModeAdvisory, testLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "  \t\n "},
		{"too long", strings.Repeat("a", config.MaxMessageContentLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, models.DefaultProjectID, &services.SendMessageRequest{Content: tt.content})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	messages, err := svc.ListMessages(ctx, models.DefaultProjectID)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Nil(t, resolver.received)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestArchive_ExportImportRoundTrip(t *testing.T) {
	store := newStore(t)
	projects := NewProjectService(store, testLogger())
	archives := NewArchiveService(store, testLogger())
	ctx := context.Background()

	src, err := projects.CreateProject(ctx, &services.CreateProjectRequest{
		Name:  "src",
		Files: map[string]string{"a.py": "x", "b.txt": "y"},
	})
	require.NoError(t, err)
	dst, err := projects.CreateProject(ctx, &services.CreateProjectRequest{
		Name:  "dst",
		Files: map[string]string{"old.py": "z"},
	})
	require.NoError(t, err)

	archive, err := archives.Export(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "src.zip", archive.Filename)

	result, err := archives.Import(ctx, dst.ID, archive.Data, services.ImportModeReplace)
	require.NoError(t, err)
	assert.Equal(t, src.Files, result.Project.Files)
	assert.Equal(t, []string{"a.py", "b.txt"}, result.Imported)

	// Export does not modify the source
	again, err := projects.GetProject(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.UpdatedAt, again.UpdatedAt)
}

func TestArchive_ImportMergeAndSkips(t *testing.T) {
	store := newStore(t)
	archives := NewArchiveService(store, testLogger())
	ctx := context.Background()

	data := zipOf(t, map[string]string{
		"handlers.py": "async def start(): ...",
		"logo.png":    "\xff\xd8\xff",
	})

	result, err := archives.Import(ctx, models.DefaultProjectID, data, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"handlers.py"}, result.Imported)
	assert.Equal(t, []string{"logo.png"}, result.Skipped)
	assert.Contains(t, result.Project.Files, "handlers.py")
	assert.Contains(t, result.Project.Files, "bot.py")
}

func TestArchive_ImportErrors(t *testing.T) {
	store := newStore(t)
	archives := NewArchiveService(store, testLogger())
	ctx := context.Background()
	data := zipOf(t, map[string]string{"a.py": "x"})

	_, err := archives.Import(ctx, models.DefaultProjectID, data, "overwrite")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = archives.Import(ctx, models.DefaultProjectID, []byte("nope"), services.ImportModeMerge)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = archives.Import(ctx, "missing", data, services.ImportModeMerge)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = archives.Export(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
