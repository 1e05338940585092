package config

import (
	"fmt"
	"os"
)

type DynamoConfig struct {
	TableName  string
	Region     string
	TtlMinutes int
}

func DynamoEnabled() bool {
	return os.Getenv("DYNAMO_TABLE_NAME") != ""
}

func GetDynamoConfig() (*DynamoConfig, error) {
	tableName := os.Getenv("DYNAMO_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("DYNAMO_TABLE_NAME must be set")
	}

	region := os.Getenv("REGION")
	if region == "" {
		return nil, fmt.Errorf("REGION must be set")
	}

	ttl, err := getEnvInt("DYNAMO_TTL_MINUTES", 7*24*60)
	if err != nil {
		return nil, err
	}

	return &DynamoConfig{
		TableName:  tableName,
		Region:     region,
		TtlMinutes: ttl,
	}, nil
}
