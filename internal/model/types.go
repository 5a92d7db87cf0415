package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// MachineConfig is a fully named machine setup: which catalog rotors sit in
// the left, middle and right slots, their start positions, and the pairings.
type MachineConfig struct {
	Rotors    [3]string `json:"rotors"`
	Positions [3]string `json:"positions"`
	Plugboard string    `json:"plugboard"`
	Reflector string    `json:"reflector"`
}

// AttackRun is the persistent record of one cryptanalysis run: the ciphertext
// it attacked, the method used, and the best configuration recovered.
type AttackRun struct {
	VersionedRecord
	ID         string        `json:"id"`
	Method     string        `json:"method"`
	CreatedAt  time.Time     `json:"created_at"`
	Ciphertext string        `json:"ciphertext"`
	Best       MachineConfig `json:"best"`
	Fitness    float64       `json:"fitness"`
	Plaintext  string        `json:"plaintext"`
	Evaluated  uint64        `json:"evaluated"`
	Seed       int64         `json:"seed"`
	ElapsedMS  int64         `json:"elapsed_ms"`
}

// Attack methods recorded on AttackRun.Method.
const (
	MethodHillClimb  = "hillclimb"
	MethodExhaustive = "exhaustive"
)
