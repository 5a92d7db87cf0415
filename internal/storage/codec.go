package storage

import (
	"encoding/json"
	"errors"

	"rotorbreak/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeAttackRun(run model.AttackRun) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeAttackRun(data []byte) (model.AttackRun, error) {
	var run model.AttackRun
	if err := json.Unmarshal(data, &run); err != nil {
		return model.AttackRun{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.AttackRun{}, err
	}
	return run, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
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
