// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func TestFuzz_CodecRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		data := make([]byte, rng.Intn(257))
		rng.Read(data)

		encoded := Encode(data)
		for _, b := range encoded {
			if b > 0x7F {
				t.Fatalf("round %d: encoded byte 0x%02X has high bit set", round, b)
			}
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("round %d: Decode error: %v", round, err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatalf("round %d: round trip mismatch", round)
		}
	}
}

func TestFuzz_FrameRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		command := byte(rng.Intn(0x21))
		payload := make([]byte, rng.Intn(65))
		rng.Read(payload)

		frame, err := Parse(Build(command, payload))
		if err != nil {
			t.Fatalf("round %d: Parse error: %v", round, err)
		}
		if frame.Command != command {
			t.Fatalf("round %d: command 0x%02X != 0x%02X", round, frame.Command, command)
		}
		if !bytes.Equal(frame.Payload, payload) {
			t.Fatalf("round %d: payload mismatch", round)
		}
	}
}

func TestFuzz_DecoderSurvivesGarbage(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	d := NewDecoder()
	for round := 0; round < rounds; round++ {
		// Random garbage must never panic, and a well-formed message
		// afterwards must always decode.
		garbage := make([]byte, rng.Intn(33))
		rng.Read(garbage)
		for _, b := range garbage {
			_, _ = d.DecodeByte(b)
		}

		payload := make([]byte, rng.Intn(17))
		rng.Read(payload)

		frames, err := d.DecodeBytes(Build(CmdReadSettings, payload))
		if err != nil {
			t.Fatalf("round %d: decode error after garbage: %v", round, err)
		}
		if len(frames) != 1 || !bytes.Equal(frames[0].Payload, payload) {
			t.Fatalf("round %d: expected recovered frame", round)
		}
	}
}
