package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/sfseed/sfseed/pkg/constants"
	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
	"github.com/sfseed/sfseed/pkg/models"
	"github.com/sfseed/sfseed/pkg/soql"
)

// seedFiles runs stage 6: discover every file linked to a seeded record,
// carry its latest version's binary content across, and re-create the
// entity links in the target.
//
// Each version is downloaded fully into memory and base64-encoded, so
// peak memory per file is about 1.37x its binary size. That constraint
// comes with the platform's version-create API; streaming would need a
// different upload path.
func (p *SeedPipeline) seedFiles(ctx context.Context) error {
	p.log.StartSpinner("Transferring files")
	summary := &models.FileSummary{}
	p.results.Files = summary

	anchorIDs := p.registry.AllSourceIDs()
	if len(anchorIDs) == 0 {
		p.log.StopSpinner("Files: nothing to attach to")
		return nil
	}

	// Link rows tie documents to the records they hang off.
	linkProjection := soql.BuildProjection([]string{constants.FieldContentDocID, constants.FieldLinkedEntityID})
	links, err := soql.QueryAllChunked(ctx, p.source, anchorIDs, func(chunk []string) string {
		return soql.BuildQuery(linkProjection, constants.ObjectContentDocumentLink,
			soql.InClause(constants.FieldLinkedEntityID, chunk), constants.AllRecords)
	})
	if err != nil {
		p.log.StopSpinnerFail("Query of content links failed")
		return err
	}

	docIDs := distinctReferenceValues(links, constants.FieldContentDocID)
	summary.Documents = len(docIDs)
	if len(docIDs) == 0 {
		p.log.StopSpinner("Files: no linked documents")
		return nil
	}

	versionProjection := soql.BuildProjection([]string{
		constants.FieldContentDocID, constants.FieldTitle, constants.FieldPathOnClient,
		constants.FieldFileExtension, constants.FieldContentSize, constants.FieldDescription,
	})
	versions, err := soql.QueryAllChunked(ctx, p.source, docIDs, func(chunk []string) string {
		where := soql.InClause(constants.FieldContentDocID, chunk) + " AND " + constants.FieldIsLatest + " = true"
		return soql.BuildQuery(versionProjection, constants.ObjectContentVersion, where, constants.AllRecords)
	})
	if err != nil {
		p.log.StopSpinnerFail("Query of content versions failed")
		return err
	}

	var totalBytes int64
	for _, v := range versions {
		totalBytes += v.GetInt64(constants.FieldContentSize)
	}
	summary.TotalBytes = totalBytes

	if p.plan.DryRun {
		p.log.StopSpinner(fmt.Sprintf("[dry-run] would transfer %d files (%d bytes) and %d links",
			len(versions), totalBytes, len(links)))
		return nil
	}

	// docMap: source ContentDocumentId → target ContentDocumentId
	docMap := make(map[string]string, len(versions))
	for i, version := range versions {
		p.log.UpdateSpinner(fmt.Sprintf("Transferring file %d/%d: %s",
			i+1, len(versions), version.GetString(constants.FieldTitle)))
		if err := p.transferVersion(ctx, version, docMap, summary); err != nil {
			return err
		}
	}

	if err := p.recreateLinks(ctx, links, docMap, summary); err != nil {
		return err
	}

	p.log.StopSpinner(fmt.Sprintf("Files: %d documents, %d versions, %d links, %d failed",
		summary.Documents, summary.Versions, summary.Links, summary.Failed))
	return nil
}

// transferVersion downloads one version's binary content from the source
// org and creates it in the target. Per-version failures are logged and
// counted; only connection-level errors abort the stage.
func (p *SeedPipeline) transferVersion(ctx context.Context, version models.SObject, docMap map[string]string, summary *models.FileSummary) error {
	versionID := version.GetString(constants.FieldID)
	sourceDocID := version.GetString(constants.FieldContentDocID)

	data, err := p.downloadVersionData(ctx, versionID)
	if err != nil {
		summary.Failed++
		p.results.AddError(constants.ObjectContentVersion, versionID, models.StageUpload, err.Error())
		return nil
	}

	newVersion := models.SObject{
		constants.FieldTitle:        version[constants.FieldTitle],
		constants.FieldPathOnClient: version[constants.FieldPathOnClient],
		constants.FieldVersionData:  base64.StdEncoding.EncodeToString(data),
	}
	if desc, present := version[constants.FieldDescription]; present && desc != nil {
		newVersion[constants.FieldDescription] = desc
	}

	saveResults, err := p.target.Create(ctx, constants.ObjectContentVersion, []models.SObject{newVersion})
	if err != nil {
		return fmt.Errorf("creating content version failed: %w", err)
	}
	sr := saveResults[0]
	if !sr.Success || sr.ID == "" {
		summary.Failed++
		p.results.AddError(constants.ObjectContentVersion, versionID, models.StageUpload, formatSaveErrors(sr.Errors))
		return nil
	}
	summary.Versions++

	// The create returns the version id; the containing document id has
	// to be queried back.
	projection := soql.BuildProjection([]string{constants.FieldContentDocID})
	query := soql.BuildQuery(projection, constants.ObjectContentVersion,
		soql.InClause(constants.FieldID, []string{sr.ID}), constants.AllRecords)
	rows, err := soql.QueryAll(ctx, p.target, query)
	if err != nil {
		return fmt.Errorf("querying new content version failed: %w", err)
	}
	if len(rows) == 0 {
		summary.Failed++
		p.results.AddError(constants.ObjectContentVersion, versionID, models.StageUpload,
			"created version not found in target")
		return nil
	}

	docMap[sourceDocID] = rows[0].GetString(constants.FieldContentDocID)
	return nil
}

// recreateLinks rebuilds ContentDocumentLink rows for every original link
// whose document and linked entity both made it across.
func (p *SeedPipeline) recreateLinks(ctx context.Context, links []models.SObject, docMap map[string]string, summary *models.FileSummary) error {
	var toWrite []models.SObject
	var sourceIDs []string
	for _, link := range links {
		targetDocID, ok := docMap[link.GetString(constants.FieldContentDocID)]
		if !ok {
			continue
		}
		targetEntityID, ok := p.registry.LookupAny(link.GetString(constants.FieldLinkedEntityID))
		if !ok {
			continue
		}
		toWrite = append(toWrite, models.SObject{
			constants.FieldContentDocID:   targetDocID,
			constants.FieldLinkedEntityID: targetEntityID,
			constants.FieldShareType:      constants.ShareTypeViewer,
			constants.FieldVisibility:     constants.VisibilityAllUsers,
		})
		sourceIDs = append(sourceIDs, link.GetString(constants.FieldContentDocID))
	}

	for start := 0; start < len(toWrite); start += constants.BatchSize {
		end := start + constants.BatchSize
		if end > len(toWrite) {
			end = len(toWrite)
		}
		saveResults, err := p.target.Create(ctx, constants.ObjectContentDocumentLink, toWrite[start:end])
		if err != nil {
			return fmt.Errorf("creating content links failed: %w", err)
		}
		for j, sr := range saveResults {
			if sr.Success {
				summary.Links++
				continue
			}
			summary.Failed++
			p.results.AddError(constants.ObjectContentDocumentLink, sourceIDs[start+j], models.StageLink, formatSaveErrors(sr.Errors))
		}
	}
	return nil
}

// downloadVersionData fetches one version's binary content through the
// authenticated VersionData endpoint, following redirects.
func (p *SeedPipeline) downloadVersionData(ctx context.Context, versionID string) ([]byte, error) {
	url := fmt.Sprintf("%s/services/data/v%s/sobjects/%s/%s/VersionData",
		p.source.InstanceURL(), p.source.APIVersion(), constants.ObjectContentVersion, versionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+p.source.AccessToken())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading version data failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, pkgErrors.NewAPIError(resp.StatusCode, "", string(body))
	}
	return io.ReadAll(resp.Body)
}
