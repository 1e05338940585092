package config

import (
	"fmt"
	"os"
)

type S3Config struct {
	BucketName string
	Region     string
	KeyPrefix  string
}

// S3Enabled reports whether finished videos should be uploaded.
func S3Enabled() bool {
	return os.Getenv("BUCKET_NAME") != ""
}

func GetS3Config() (*S3Config, error) {
	bucketName := os.Getenv("BUCKET_NAME")
	if bucketName == "" {
		return nil, fmt.Errorf("BUCKET_NAME must be set")
	}

	region := os.Getenv("REGION")
	if region == "" {
		return nil, fmt.Errorf("REGION must be set")
	}

	return &S3Config{
		BucketName: bucketName,
		Region:     region,
		KeyPrefix:  getEnv("S3_KEY_PREFIX", "presentations"),
	}, nil
}
