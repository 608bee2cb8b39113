package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/smithy-go"
)

type rdsStub struct {
	logPages     []*rds.DescribeDBLogFilesOutput
	logInputs    []*rds.DescribeDBLogFilesInput
	portion      *rds.DownloadDBLogFilePortionOutput
	portionErr   error
	portionInput *rds.DownloadDBLogFilePortionInput
	instances    *rds.DescribeDBInstancesOutput
}

func (s *rdsStub) DescribeDBLogFiles(_ context.Context, in *rds.DescribeDBLogFilesInput, _ ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error) {
	s.logInputs = append(s.logInputs, in)
	idx := len(s.logInputs) - 1
	if idx >= len(s.logPages) {
		return &rds.DescribeDBLogFilesOutput{}, nil
	}
	return s.logPages[idx], nil
}

func (s *rdsStub) DownloadDBLogFilePortion(_ context.Context, in *rds.DownloadDBLogFilePortionInput, _ ...func(*rds.Options)) (*rds.DownloadDBLogFilePortionOutput, error) {
	s.portionInput = in
	if s.portionErr != nil {
		return nil, s.portionErr
	}
	return s.portion, nil
}

func (s *rdsStub) DescribeDBInstances(context.Context, *rds.DescribeDBInstancesInput, ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return s.instances, nil
}

func TestRDSListLogFilesPaginatesAndSorts(t *testing.T) {
	stub := &rdsStub{logPages: []*rds.DescribeDBLogFilesOutput{
		{
			DescribeDBLogFiles: []types.DescribeDBLogFilesDetails{
				{LogFileName: aws.String("error/postgresql.log.2"), Size: aws.Int64(50), LastWritten: aws.Int64(300)},
			},
			Marker: aws.String("page-2"),
		},
		{
			DescribeDBLogFiles: []types.DescribeDBLogFilesDetails{
				{LogFileName: aws.String("error/postgresql.log.1"), Size: aws.Int64(100), LastWritten: aws.Int64(200)},
			},
		},
	}}

	files, err := NewRDS(stub).ListLogFiles(context.Background(), "db1", 7)
	if err != nil {
		t.Fatalf("ListLogFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Name != "error/postgresql.log.1" || files[1].Name != "error/postgresql.log.2" {
		t.Fatalf("unexpected order: %+v", files)
	}
	if got := aws.ToInt64(stub.logInputs[0].FileLastWritten); got != 7000 {
		t.Fatalf("expected cutoff in milliseconds, got %d", got)
	}
	if got := aws.ToString(stub.logInputs[1].Marker); got != "page-2" {
		t.Fatalf("expected second page marker, got %q", got)
	}
}

func TestRDSReadPortion(t *testing.T) {
	stub := &rdsStub{portion: &rds.DownloadDBLogFilePortionOutput{
		LogFileData:           aws.String("line\n"),
		Marker:                aws.String("12:345"),
		AdditionalDataPending: aws.Bool(true),
	}}

	portion, err := NewRDS(stub).ReadPortion(context.Background(), "db1", "error/postgresql.log.2", InitialMarker, 500)
	if err != nil {
		t.Fatalf("ReadPortion: %v", err)
	}
	if string(portion.Data) != "line\n" || portion.NextMarker != "12:345" || !portion.MorePending {
		t.Fatalf("unexpected portion: %+v", portion)
	}
	if aws.ToString(stub.portionInput.Marker) != "0" || aws.ToInt32(stub.portionInput.NumberOfLines) != 500 {
		t.Fatalf("unexpected request: %+v", stub.portionInput)
	}
}

func TestRDSReadPortionClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "log file missing", err: &types.DBLogFileNotFoundFault{}, want: ErrRejected},
		{name: "bad marker", err: &smithy.GenericAPIError{Code: "InvalidParameterValue"}, want: ErrRejected},
		{name: "instance missing", err: &types.DBInstanceNotFoundFault{}, want: ErrUnavailable},
		{name: "network", err: errors.New("connection reset"), want: ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &rdsStub{portionErr: tt.err}
			_, err := NewRDS(stub).ReadPortion(context.Background(), "db1", "f", "7", 10)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRDSListInstances(t *testing.T) {
	stub := &rdsStub{instances: &rds.DescribeDBInstancesOutput{
		DBInstances: []types.DBInstance{
			{DBInstanceIdentifier: aws.String("db1"), Engine: aws.String("postgres")},
			{DBInstanceIdentifier: aws.String("db2"), Engine: aws.String("mysql")},
		},
	}}
	instances, err := NewRDS(stub).ListInstances(context.Background())
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	filtered := FilterByEngine(instances, "mysql")
	if len(filtered) != 1 || filtered[0].ID != "db2" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}
}
