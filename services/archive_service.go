package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"api-yt/config"
)

// ArchiveService mirrors served download artifacts into an S3 bucket. It is
// optional: without AWS credentials the server keeps everything local and the
// service is simply not constructed.
type ArchiveService struct {
	client *s3.Client
	bucket string
	region string
}

func NewArchiveService(cfg *config.Config) (*ArchiveService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AWSAccessKeyID,
				SecretAccessKey: cfg.AWSSecretAccessKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &ArchiveService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
		region: cfg.AWSRegion,
	}, nil
}

// StoreArtifact uploads a local artifact under artifacts/{name} and returns
// its S3 URL.
func (s *ArchiveService) StoreArtifact(ctx context.Context, localPath, name, contentType string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	key := "artifacts/" + name
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// StoreArtifactAsync uploads in the background and logs the outcome, then
// hands the working directory to the cleanup function. Serving never waits on
// the archive.
func (s *ArchiveService) StoreArtifactAsync(localPath, name, contentType string, cleanup func()) {
	go func() {
		defer cleanup()
		url, err := s.StoreArtifact(context.Background(), localPath, name, contentType)
		if err != nil {
			log.Printf("Failed to archive artifact %s: %v", name, err)
			return
		}
		log.Printf("Archived artifact %s to %s", name, url)
	}()
}
