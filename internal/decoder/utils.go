package decoder

import (
	"errors"
	"math"

	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/scrypto"
)

// SecurityReport summarizes the LSB plane of a carrier.
type SecurityReport struct {
	Zeros     int
	Ones      int
	ZeroRatio float64 // percent
	Entropy   float64 // bits per LSB byte, max 8
}

// LooksEncrypted reports whether the LSB plane is close to uniform noise,
// as it is after a full-capacity embed of ciphertext.
func (r SecurityReport) LooksEncrypted() bool {
	return r.ZeroRatio > 45 && r.ZeroRatio < 55 && r.Entropy > 7.5
}

// AnalyzeSecurity performs security analysis on a carrier's LSBs
func AnalyzeSecurity(slots lsb.Slots) SecurityReport {
	var report SecurityReport

	for _, bit := range lsb.ExtractBits(slots) {
		if bit == 0 {
			report.Zeros++
		} else {
			report.Ones++
		}
	}

	total := float64(report.Zeros + report.Ones)
	if total == 0 {
		return report
	}
	report.ZeroRatio = float64(report.Zeros) / total * 100

	lsbBytes := lsb.Extract(slots)
	frequency := make(map[byte]int)
	for _, b := range lsbBytes {
		frequency[b]++
	}

	n := float64(len(lsbBytes))
	for _, count := range frequency {
		p := float64(count) / n
		report.Entropy -= p * math.Log2(p)
	}

	return report
}

// ErrNoPasswordMatched is returned when every candidate password fails.
var ErrNoPasswordMatched = errors.New("all passwords failed")

// TryMultiplePasswords extracts the payload once and attempts decryption
// with each candidate in order. It returns the first password that works.
func TryMultiplePasswords(slots lsb.Slots, passwords []string) (string, *ExtractedMessage, error) {
	ssd := NewSecureStegoDecoder(slots, nil)
	ssd.ExtractBitStream()
	if err := ssd.ExtractSecurePayload(); err != nil {
		return "", nil, err
	}

	for i, pass := range passwords {
		ssd.password = []byte(pass)
		result, err := ssd.DecryptPayload()
		if errors.Is(err, scrypto.ErrIntegrity) {
			ssd.log.WithField("attempt", i+1).Debug("Wrong password")
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return pass, result, nil
	}

	return "", nil, ErrNoPasswordMatched
}
