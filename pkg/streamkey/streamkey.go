package streamkey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyBytes is the entropy of a generated stream key; the key itself is
// its hex encoding (40 characters).
const KeyBytes = 20

// Generate returns a new random stream key.
func Generate() (string, error) {
	buf := make([]byte, KeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate stream key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RTMPURL builds the ingest URL a performer points their encoder at.
func RTMPURL(baseURL, streamKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + streamKey
}

// HLSURL builds the playback URL viewers consume.
func HLSURL(baseURL, streamKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + streamKey + ".m3u8"
}
