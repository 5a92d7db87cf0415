package main

import (
	"encoding/json"
	"math"
	"os"

	"rotorbreak/pkg/rotorbreak"
)

// Attack config files are flat JSON objects; absent keys keep the flag
// values, present keys win over them.

func loadHillClimbConfig(path string) (rotorbreak.HillClimbRequest, error) {
	raw, err := readConfig(path)
	if err != nil {
		return rotorbreak.HillClimbRequest{}, err
	}

	var req rotorbreak.HillClimbRequest
	req.AttackRequest = attackFromConfig(raw)
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["max_iterations"]); ok {
		req.MaxIterations = v
	}
	if v, ok := asInt(raw["stagnation_limit"]); ok {
		req.StagnationLimit = v
	}
	return req, nil
}

func loadExhaustiveConfig(path string) (rotorbreak.ExhaustiveRequest, error) {
	raw, err := readConfig(path)
	if err != nil {
		return rotorbreak.ExhaustiveRequest{}, err
	}

	var req rotorbreak.ExhaustiveRequest
	req.AttackRequest = attackFromConfig(raw)
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt64(raw["progress_every"]); ok && v > 0 {
		req.ProgressEvery = uint64(v)
	}
	return req, nil
}

func mergeHillClimb(base, loaded rotorbreak.HillClimbRequest) rotorbreak.HillClimbRequest {
	base.AttackRequest = mergeAttack(base.AttackRequest, loaded.AttackRequest)
	if loaded.Seed != 0 {
		base.Seed = loaded.Seed
	}
	if loaded.MaxIterations != 0 {
		base.MaxIterations = loaded.MaxIterations
	}
	if loaded.StagnationLimit != 0 {
		base.StagnationLimit = loaded.StagnationLimit
	}
	return base
}

func mergeExhaustive(base, loaded rotorbreak.ExhaustiveRequest) rotorbreak.ExhaustiveRequest {
	base.AttackRequest = mergeAttack(base.AttackRequest, loaded.AttackRequest)
	if loaded.Workers != 0 {
		base.Workers = loaded.Workers
	}
	if loaded.ProgressEvery != 0 {
		base.ProgressEvery = loaded.ProgressEvery
	}
	return base
}

func mergeAttack(base, loaded rotorbreak.AttackRequest) rotorbreak.AttackRequest {
	if loaded.Ciphertext != "" {
		base.Ciphertext = loaded.Ciphertext
	}
	if loaded.Plugboard != "" {
		base.Plugboard = loaded.Plugboard
	}
	if loaded.Reflector != "" {
		base.Reflector = loaded.Reflector
	}
	return base
}

func attackFromConfig(raw map[string]any) rotorbreak.AttackRequest {
	var req rotorbreak.AttackRequest
	if v, ok := asString(raw["ciphertext"]); ok {
		req.Ciphertext = v
	}
	if v, ok := asString(raw["plugboard"]); ok {
		req.Plugboard = v
	}
	if v, ok := asString(raw["reflector"]); ok {
		req.Reflector = v
	}
	return req
}

func readConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
