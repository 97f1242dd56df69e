// Package findings fetches findings from the detection source. The
// approval stage must never act on data carried in a callback: it
// re-fetches the referenced finding here and re-validates it.
package findings

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/macie2"

	"github.com/sentinelops/macieguard/internal/model"
)

// Source retrieves a finding by ID. A nil finding with a nil error
// means the source has no finding for that ID.
type Source interface {
	Get(ctx context.Context, id string) (*model.Finding, error)
}

// MacieSource implements Source against the Macie API.
type MacieSource struct {
	client *macie2.Client
}

// NewMacieSource wraps a Macie client.
func NewMacieSource(client *macie2.Client) *MacieSource {
	return &MacieSource{client: client}
}

// Get fetches one finding by ID.
func (s *MacieSource) Get(ctx context.Context, id string) (*model.Finding, error) {
	out, err := s.client.GetFindings(ctx, &macie2.GetFindingsInput{
		FindingIds: []string{id},
	})
	if err != nil {
		return nil, &model.TransientError{Op: "macie get findings", Err: err}
	}
	if len(out.Findings) == 0 {
		return nil, nil
	}

	sdk := out.Findings[0]
	f := &model.Finding{
		ID:          aws.ToString(sdk.Id),
		AccountID:   aws.ToString(sdk.AccountId),
		Region:      aws.ToString(sdk.Region),
		Category:    string(sdk.Category),
		Type:        string(sdk.Type),
		Title:       aws.ToString(sdk.Title),
		Description: aws.ToString(sdk.Description),
		Count:       aws.ToInt64(sdk.Count),
		CreatedAt:   aws.ToTime(sdk.CreatedAt),
		UpdatedAt:   aws.ToTime(sdk.UpdatedAt),
	}
	if sdk.Severity != nil {
		f.Severity = model.Severity{
			Score:       aws.ToInt64(sdk.Severity.Score),
			Description: string(sdk.Severity.Description),
		}
	}
	if ra := sdk.ResourcesAffected; ra != nil {
		if ra.S3Bucket != nil {
			f.ResourcesAffected.S3Bucket = model.S3Bucket{
				Name: aws.ToString(ra.S3Bucket.Name),
				Arn:  aws.ToString(ra.S3Bucket.Arn),
			}
		}
		if ra.S3Object != nil {
			f.ResourcesAffected.S3Object = model.S3Object{
				Key:  aws.ToString(ra.S3Object.Key),
				Path: aws.ToString(ra.S3Object.Path),
				ETag: aws.ToString(ra.S3Object.ETag),
			}
		}
	}
	return f, nil
}
