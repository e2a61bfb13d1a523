package storage

import (
	"encoding/json"
	"errors"

	"evodrive/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeNetwork(record model.NetworkRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeNetwork(data []byte) (model.NetworkRecord, error) {
	var record model.NetworkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.NetworkRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.NetworkRecord{}, err
	}
	return record, nil
}

func EncodeRunSummary(summary model.RunSummary) ([]byte, error) {
	return json.Marshal(summary)
}

func DecodeRunSummary(data []byte) (model.RunSummary, error) {
	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return summary, nil
}

func EncodeGenerationHistory(history []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeGenerationHistory(data []byte) ([]model.GenerationRecord, error) {
	var history []model.GenerationRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
