package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/smithy-go"
)

// RDSAPI is the subset of the RDS client used by the adapter.
type RDSAPI interface {
	DescribeDBLogFiles(ctx context.Context, in *rds.DescribeDBLogFilesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error)
	DownloadDBLogFilePortion(ctx context.Context, in *rds.DownloadDBLogFilePortionInput, optFns ...func(*rds.Options)) (*rds.DownloadDBLogFilePortionOutput, error)
	DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// RDSOptions selects the AWS account and region for the adapter.
type RDSOptions struct {
	Region   string
	Profile  string
	Endpoint string
}

// RDS reads instance logs through the Amazon RDS log file API.
type RDS struct {
	api RDSAPI
}

// NewRDS wraps an existing RDS API client.
func NewRDS(api RDSAPI) *RDS {
	return &RDS{api: api}
}

// OpenRDS loads the shared AWS configuration and builds an RDS adapter.
func OpenRDS(ctx context.Context, opts RDSOptions) (*RDS, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(opts.Region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if profile := strings.TrimSpace(opts.Profile); profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	client := rds.NewFromConfig(awsCfg, func(o *rds.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewRDS(client), nil
}

// ListLogFiles returns every log file of instance written after createdAfter,
// oldest first.
func (r *RDS) ListLogFiles(ctx context.Context, instance string, createdAfter int64) ([]LogFile, error) {
	input := &rds.DescribeDBLogFilesInput{DBInstanceIdentifier: aws.String(instance)}
	if createdAfter > 0 {
		// The API filters on epoch milliseconds.
		input.FileLastWritten = aws.Int64(createdAfter * 1000)
	}

	var files []LogFile
	paginator := rds.NewDescribeDBLogFilesPaginator(r.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, Wrap(classify(err), instance, "describe log files", err)
		}
		for _, detail := range page.DescribeDBLogFiles {
			files = append(files, LogFile{
				Name:        aws.ToString(detail.LogFileName),
				Size:        aws.ToInt64(detail.Size),
				LastWritten: aws.ToInt64(detail.LastWritten),
			})
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].LastWritten < files[j].LastWritten
	})
	return files, nil
}

// ReadPortion downloads up to maxLines lines of fileName starting at marker.
func (r *RDS) ReadPortion(ctx context.Context, instance, fileName string, marker Marker, maxLines int) (Portion, error) {
	input := &rds.DownloadDBLogFilePortionInput{
		DBInstanceIdentifier: aws.String(instance),
		LogFileName:          aws.String(fileName),
		Marker:               aws.String(string(marker)),
	}
	if maxLines > 0 {
		input.NumberOfLines = aws.Int32(int32(maxLines))
	}
	out, err := r.api.DownloadDBLogFilePortion(ctx, input)
	if err != nil {
		return Portion{}, Wrap(classify(err), instance, "download "+fileName, err)
	}
	next := Marker(aws.ToString(out.Marker))
	if next == "" {
		next = marker
	}
	return Portion{
		Data:        []byte(aws.ToString(out.LogFileData)),
		NextMarker:  next,
		MorePending: aws.ToBool(out.AdditionalDataPending),
	}, nil
}

// ListInstances returns every DB instance visible to the account.
func (r *RDS) ListInstances(ctx context.Context) ([]Instance, error) {
	var instances []Instance
	paginator := rds.NewDescribeDBInstancesPaginator(r.api, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, Wrap(classify(err), "", "describe instances", err)
		}
		for _, db := range page.DBInstances {
			instances = append(instances, Instance{
				ID:     aws.ToString(db.DBInstanceIdentifier),
				Engine: aws.ToString(db.Engine),
				Status: aws.ToString(db.DBInstanceStatus),
			})
		}
	}
	return instances, nil
}

func classify(err error) error {
	var logNotFound *types.DBLogFileNotFoundFault
	if errors.As(err, &logNotFound) {
		return ErrRejected
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidParameterValue", "InvalidParameterCombination", "DBLogFileNotFoundFault":
			return ErrRejected
		}
	}
	return ErrUnavailable
}
