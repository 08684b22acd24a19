package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sink receives the final result of a crawl run for persistence
type Sink interface {
	Write(result *Result) error
}

// JSONFileSink writes the ordered record list to a JSON file
type JSONFileSink struct {
	Path string
}

// NewJSONFileSink creates a sink writing to path
func NewJSONFileSink(path string) *JSONFileSink {
	return &JSONFileSink{Path: path}
}

// Write marshals the records as an indented JSON array
func (s *JSONFileSink) Write(result *Result) error {
	records := result.Records
	if records == nil {
		records = []ContentRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}

	return nil
}

// ReadJSONFile parses a file produced by JSONFileSink back into records
func ReadJSONFile(path string) ([]ContentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var records []ContentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records JSON: %w", err)
	}

	return records, nil
}

// MultiSink fans a result out to several sinks.
// Every sink is tried; the errors of all failing sinks are joined.
type MultiSink []Sink

// Write forwards the result to each sink in order
func (m MultiSink) Write(result *Result) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Write(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
