package version

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// First is the version assigned when the history is empty.
const First = "1.0.0"

// Next bumps the patch component of a major.minor.patch string.
func Next(latest string) (string, error) {
	if latest == "" {
		return First, nil
	}
	parts := strings.Split(latest, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed version %q", latest)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("malformed version %q: %w", latest, err)
	}

	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1), nil
}

var (
	encoder = mustEncoder()
	decoder = mustDecoder()
)

func mustEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic(fmt.Sprintf("zstd encoder: %v", err))
	}

	return enc
}

func mustDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd decoder: %v", err))
	}

	return dec
}

// Encode serialises entries as zstd-compressed JSON.
func Encode(entries []model.RankingEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.RankingEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func Decode(snapshot []byte) ([]model.RankingEntry, error) {
	raw, err := decoder.DecodeAll(snapshot, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var entries []model.RankingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return entries, nil
}
