package glacier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arencloud/chione/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	"github.com/aws/aws-sdk-go-v2/service/glacier/types"
	"github.com/aws/smithy-go"
)

type JobType string

const (
	JobInventoryRetrieval JobType = "inventory-retrieval"
	JobArchiveRetrieval   JobType = "archive-retrieval"
)

// Tier is the retrieval speed; only meaningful for archive retrievals.
type Tier string

const (
	TierExpedited Tier = "Expedited"
	TierStandard  Tier = "Standard"
	TierBulk      Tier = "Bulk"
)

// ErrJobNotFound is returned by DescribeJob and JobOutput once the provider has purged the job.
var ErrJobNotFound = errors.New("glacier: job not found")

// VaultSummary is one entry of ListVaults.
type VaultSummary struct {
	Name         string
	ARN          string
	SizeInBytes  int64
	CreationDate string
	ArchiveCount int64
}

type JobRequest struct {
	Type      JobType
	ArchiveID string
	Tier      Tier
}

type JobState struct {
	ID            string
	Completed     bool
	StatusCode    string
	StatusMessage string
}

// API is the subset of *glacier.Client used here.
type API interface {
	glacier.ListVaultsAPIClient
	InitiateJob(ctx context.Context, in *glacier.InitiateJobInput, optFns ...func(*glacier.Options)) (*glacier.InitiateJobOutput, error)
	DescribeJob(ctx context.Context, in *glacier.DescribeJobInput, optFns ...func(*glacier.Options)) (*glacier.DescribeJobOutput, error)
	GetJobOutput(ctx context.Context, in *glacier.GetJobOutputInput, optFns ...func(*glacier.Options)) (*glacier.GetJobOutputOutput, error)
}

type Client struct {
	api       API
	accountID string
	snsTopic  string
}

// New wraps an API implementation. An empty accountID means the account that
// owns the credentials.
func New(api API, accountID, snsTopic string) *Client {
	if accountID == "" {
		accountID = "-"
	}
	return &Client{api: api, accountID: accountID, snsTopic: snsTopic}
}

// NewFromAccount builds a client from stored credentials. endpoint may be
// empty; it is set for local emulators.
func NewFromAccount(a models.AccountConfig, endpoint string) (*Client, error) {
	if strings.TrimSpace(a.AccessKey) == "" || strings.TrimSpace(a.SecretKey) == "" {
		return nil, errors.New("glacier: access key and secret are required")
	}
	if strings.TrimSpace(a.Region) == "" {
		return nil, errors.New("glacier: region is required")
	}
	opts := glacier.Options{
		Region:      a.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(a.AccessKey, a.SecretKey, "")),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return New(glacier.New(opts), a.Account, a.SNSTopicARN), nil
}

// ListVaults walks every page of the account's vault list, in provider order.
func (c *Client) ListVaults(ctx context.Context) ([]VaultSummary, error) {
	var out []VaultSummary
	p := glacier.NewListVaultsPaginator(c.api, &glacier.ListVaultsInput{AccountId: aws.String(c.accountID)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list vaults: %w", err)
		}
		for _, v := range page.VaultList {
			out = append(out, VaultSummary{
				Name:         aws.ToString(v.VaultName),
				ARN:          aws.ToString(v.VaultARN),
				SizeInBytes:  v.SizeInBytes,
				CreationDate: aws.ToString(v.CreationDate),
				ArchiveCount: v.NumberOfArchives,
			})
		}
	}
	return out, nil
}

// StartJob initiates a job and returns its id. The configured SNS topic is
// attached to every job; the tier is sent only for archive retrievals.
func (c *Client) StartJob(ctx context.Context, vault string, req JobRequest) (string, error) {
	params := &types.JobParameters{Type: aws.String(string(req.Type))}
	if c.snsTopic != "" {
		params.SNSTopic = aws.String(c.snsTopic)
	}
	if req.Type != JobInventoryRetrieval {
		if req.ArchiveID != "" {
			params.ArchiveId = aws.String(req.ArchiveID)
		}
		if req.Tier != "" {
			params.Tier = aws.String(string(req.Tier))
		}
	}
	res, err := c.api.InitiateJob(ctx, &glacier.InitiateJobInput{
		AccountId:     aws.String(c.accountID),
		VaultName:     aws.String(vault),
		JobParameters: params,
	})
	if err != nil {
		return "", fmt.Errorf("initiate %s job on %s: %w", req.Type, vault, err)
	}
	id := aws.ToString(res.JobId)
	if id == "" {
		return "", fmt.Errorf("initiate %s job on %s: empty job id", req.Type, vault)
	}
	return id, nil
}

func (c *Client) DescribeJob(ctx context.Context, vault, jobID string) (JobState, error) {
	res, err := c.api.DescribeJob(ctx, &glacier.DescribeJobInput{
		AccountId: aws.String(c.accountID),
		VaultName: aws.String(vault),
		JobId:     aws.String(jobID),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return JobState{}, fmt.Errorf("describe job %s on %s: %w", jobID, vault, ErrJobNotFound)
		}
		return JobState{}, fmt.Errorf("describe job %s on %s: %w", jobID, vault, err)
	}
	return JobState{
		ID:            jobID,
		Completed:     res.Completed,
		StatusCode:    string(res.StatusCode),
		StatusMessage: aws.ToString(res.StatusMessage),
	}, nil
}

// JobOutput streams a completed job's output. The caller closes it.
func (c *Client) JobOutput(ctx context.Context, vault, jobID string) (io.ReadCloser, error) {
	res, err := c.api.GetJobOutput(ctx, &glacier.GetJobOutputInput{
		AccountId: aws.String(c.accountID),
		VaultName: aws.String(vault),
		JobId:     aws.String(jobID),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("get output of job %s on %s: %w", jobID, vault, ErrJobNotFound)
		}
		return nil, fmt.Errorf("get output of job %s on %s: %w", jobID, vault, err)
	}
	if res.Body == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return res.Body, nil
}

// ErrorCode returns the provider error code carried by err, or "" when err
// did not come from the provider API.
func ErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
