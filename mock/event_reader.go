package mock_generator

import (
	"encoding/json"
	"fmt"
	"os"

	"slide-narrator/application/ports/outbound"
)

type EventReader interface {
	Read(fileName string) ([]MockEvent, error)
}

type fileEventReader struct {
	logger outbound.LoggerPort
}

func NewFileEventReader(logger outbound.LoggerPort) EventReader {
	return &fileEventReader{
		logger: logger,
	}
}

func (f *fileEventReader) Read(fileName string) ([]MockEvent, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			f.logger.Error(err, "failed to close file")
		}
	}(file)

	var events []MockEvent
	if err := json.NewDecoder(file).Decode(&events); err != nil {
		f.logger.Error(err, "failed to decode json")
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("mock fixture %s has no events", fileName)
	}

	return events, nil
}
