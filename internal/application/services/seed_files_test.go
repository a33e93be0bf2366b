package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/pkg/models"
)

func stubFileQueries(source *fakeOrg) {
	source.stubQuery("FROM ContentDocumentLink",
		models.SObject{"ContentDocumentId": "069S", "LinkedEntityId": "001S"},
		models.SObject{"ContentDocumentId": "069S", "LinkedEntityId": "001X"},
	)
	source.stubQuery("FROM ContentVersion",
		models.SObject{
			"Id": "068S", "ContentDocumentId": "069S", "Title": "report",
			"PathOnClient": "report.pdf", "ContentSize": float64(14),
			"Description": "Q3 numbers",
		},
	)
}

func TestSeedFilesTransfersVersionsAndRecreatesLinks(t *testing.T) {
	downloads := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
		assert.Equal(t, "/services/data/v59.0/sobjects/ContentVersion/068S/VersionData", r.URL.Path)
		assert.Equal(t, "Bearer fake-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("binary-content"))
	}))
	defer server.Close()

	source := newFakeOrg(server.URL)
	target := newFakeOrg("https://tgt.example")
	stubFileQueries(source)
	target.stubQuery("FROM ContentVersion",
		models.SObject{"Id": "068T", "ContentDocumentId": "069T"})

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})
	p.registry.Register("Account", "001S", "001T")

	require.NoError(t, p.seedFiles(context.Background()))
	assert.Equal(t, 1, downloads)

	require.Len(t, target.created["ContentVersion"], 1)
	version := target.created["ContentVersion"][0]
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("binary-content")), version.GetString("VersionData"))
	assert.Equal(t, "report", version.GetString("Title"))
	assert.Equal(t, "report.pdf", version.GetString("PathOnClient"))
	assert.Equal(t, "Q3 numbers", version.GetString("Description"))
	assert.False(t, version.Has("ContentDocumentId"))

	// Only the link whose entity was seeded is rebuilt, and it points at
	// the target-side ids on both ends.
	require.Len(t, target.created["ContentDocumentLink"], 1)
	link := target.created["ContentDocumentLink"][0]
	assert.Equal(t, "069T", link.GetString("ContentDocumentId"))
	assert.Equal(t, "001T", link.GetString("LinkedEntityId"))
	assert.Equal(t, "V", link.GetString("ShareType"))
	assert.Equal(t, "AllUsers", link.GetString("Visibility"))

	summary := p.results.Files
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Documents)
	assert.Equal(t, 1, summary.Versions)
	assert.Equal(t, 1, summary.Links)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, int64(14), summary.TotalBytes)
	assert.Empty(t, p.results.Errors)
}

func TestSeedFilesDryRunWritesNothing(t *testing.T) {
	downloads := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
	}))
	defer server.Close()

	source := newFakeOrg(server.URL)
	target := newFakeOrg("https://tgt.example")
	stubFileQueries(source)

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account", DryRun: true})
	p.registry.Register("Account", "001S", "001T")

	require.NoError(t, p.seedFiles(context.Background()))

	assert.Zero(t, downloads)
	assert.Empty(t, target.created)

	summary := p.results.Files
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Documents)
	assert.Equal(t, int64(14), summary.TotalBytes)
	assert.Equal(t, 0, summary.Versions)
	assert.Equal(t, 0, summary.Links)
}

func TestSeedFilesCountsFailedDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	source := newFakeOrg(server.URL)
	target := newFakeOrg("https://tgt.example")
	stubFileQueries(source)

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})
	p.registry.Register("Account", "001S", "001T")

	require.NoError(t, p.seedFiles(context.Background()))

	assert.Empty(t, target.created)
	summary := p.results.Files
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Versions)
	assert.Equal(t, 0, summary.Links)

	require.Len(t, p.results.Errors, 1)
	seedErr := p.results.Errors[0]
	assert.Equal(t, "ContentVersion", seedErr.Object)
	assert.Equal(t, "068S", seedErr.SourceID)
	assert.Equal(t, models.StageUpload, seedErr.Stage)
	assert.Contains(t, seedErr.Message, "forbidden")
}

func TestSeedFilesSkipsLinksOfFailedVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary-content"))
	}))
	defer server.Close()

	source := newFakeOrg(server.URL)
	target := newFakeOrg("https://tgt.example")
	stubFileQueries(source)
	target.createHook = func(object string, records []models.SObject) ([]ports.SaveResult, error) {
		require.Equal(t, "ContentVersion", object)
		return []ports.SaveResult{{Success: false, Errors: []ports.SaveError{
			{StatusCode: "STORAGE_LIMIT_EXCEEDED", Message: "org storage is full"},
		}}}, nil
	}

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})
	p.registry.Register("Account", "001S", "001T")

	require.NoError(t, p.seedFiles(context.Background()))

	summary := p.results.Files
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Versions)
	assert.Equal(t, 0, summary.Links)

	require.Len(t, p.results.Errors, 1)
	assert.Equal(t, models.StageUpload, p.results.Errors[0].Stage)
	assert.Equal(t, "STORAGE_LIMIT_EXCEEDED: org storage is full", p.results.Errors[0].Message)
}

func TestSeedFilesSkipsWhenNothingSeeded(t *testing.T) {
	source := newFakeOrg("https://src.example")
	target := newFakeOrg("https://tgt.example")

	p := newTestPipeline(source, target, models.SeedPlan{RootObject: "Account"})

	require.NoError(t, p.seedFiles(context.Background()))

	assert.Empty(t, source.queriesRun)
	assert.Empty(t, target.created)
	require.NotNil(t, p.results.Files)
	assert.Equal(t, 0, p.results.Files.Documents)
}
