package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/faanross/stegocrypt/internal/decoder"
	"github.com/faanross/stegocrypt/internal/encoder"
	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/scrypto"
	"github.com/faanross/stegocrypt/internal/spec"
	"github.com/sirupsen/logrus"
)

// stegoCarrier is a loaded cover that can be written back out.
type stegoCarrier interface {
	lsb.Slots
	Encode(w io.Writer) error
}

func main() {
	// Command line arguments
	coverFile := flag.String("carrier", "", "Path to cover image or WAV file")
	inputFile := flag.String("input", "", "Path to input text file")
	messageArg := flag.String("message", "", "Message text (instead of -input)")
	outputFile := flag.String("output", "", "Output file (default encoded_image.png or encoded_audio.wav)")
	audio := flag.Bool("audio", false, "Treat the carrier as PCM WAV (implied by a .wav extension)")
	password := flag.String("password", "", "Password (prompt if not provided)")
	analyze := flag.Bool("analyze", false, "Show security analysis")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Validate input
	if *coverFile == "" {
		log.Fatal("❌ Please provide a cover file with -carrier flag")
	}
	if (*inputFile == "") == (*messageArg == "") {
		log.Fatal("❌ Please provide exactly one of -input or -message")
	}

	ext := strings.ToLower(filepath.Ext(*coverFile))
	if ext == ".wav" || ext == ".wave" {
		*audio = true
	}
	if *outputFile == "" {
		*outputFile = spec.ENCODED_IMAGE_NAME
		if *audio {
			*outputFile = spec.ENCODED_AUDIO_NAME
		}
	}

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	fmt.Println("\n🔐 Secure Steganography Encoder")
	fmt.Println("=" + strings.Repeat("=", 40))

	message := []byte(*messageArg)
	if *inputFile != "" {
		var err error
		message, err = os.ReadFile(*inputFile)
		if err != nil {
			log.Fatalf("❌ Error reading file: %v", err)
		}
		fmt.Printf("\n📄 Input file: %s (%d bytes)\n", *inputFile, len(message))
	}
	if len(message) == 0 {
		log.Fatal("❌ Message cannot be empty")
	}

	// Get password
	pass, err := readPassword(*password)
	if err != nil {
		log.Fatalf("❌ Password error: %v", err)
	}

	// Load cover
	cover, err := loadCarrier(*coverFile, *audio)
	if err != nil {
		log.Fatalf("❌ Error loading carrier: %v", err)
	}

	// Create secure encoder
	stegoEncoder := encoder.NewSecureStegoEncoder(message, pass, encoder.WithLogger(logger))
	if err := stegoEncoder.PrepareSecurePayload(); err != nil {
		log.Fatalf("❌ Encryption failed: %v", err)
	}

	stats := stegoEncoder.Stats(cover.Len())
	fmt.Printf("\n📊 Payload:\n")
	fmt.Printf("   Secure payload: %d bytes (%d bits)\n", stats.PayloadBytes, stats.BitsNeeded)
	fmt.Printf("   Carrier capacity: %d bits\n", stats.Capacity)
	fmt.Printf("   Utilization: %.1f%%\n", stats.Utilization)

	if err := stegoEncoder.Embed(cover); err != nil {
		if errors.Is(err, lsb.ErrCapacity) && !*audio {
			fmt.Printf("\n⚠️  Cover needs at least %d pixels\n", stegoEncoder.RequiredPixels())
		}
		log.Fatalf("❌ Encoding failed: %v", err)
	}

	// Security analysis
	if *analyze {
		printAnalysis(decoder.AnalyzeSecurity(cover))
	}

	// Output file is only created once encoding succeeded
	var buf bytes.Buffer
	if err := cover.Encode(&buf); err != nil {
		log.Fatalf("❌ Output encoding failed: %v", err)
	}
	if err := os.WriteFile(*outputFile, buf.Bytes(), 0644); err != nil {
		log.Fatalf("❌ Cannot write output file: %v", err)
	}

	fmt.Printf("\n✅ Secure steganography complete!\n")
	fmt.Printf("   Output: %s\n", *outputFile)
	fmt.Printf("   Security: Fernet (AES-128-CBC + HMAC-SHA256) + PBKDF2-%d\n", spec.PBKDF2_ITERS)
	fmt.Printf("\n🔓 To decode: Use the secure decoder with the same password\n")
}

func readPassword(flagValue string) ([]byte, error) {
	const minLength = 8

	if flagValue != "" {
		if len(flagValue) < minLength {
			return nil, fmt.Errorf("password must be at least %d characters", minLength)
		}
		return []byte(flagValue), nil
	}

	pass, err := scrypto.GetSecurePassword("\n🔑 Enter password (min 8 chars): ", minLength)
	if err != nil {
		return nil, err
	}

	// Confirm password
	confirm, err := scrypto.GetSecurePassword("🔑 Confirm password: ", 0)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pass, confirm) {
		return nil, errors.New("passwords do not match")
	}
	return pass, nil
}

func loadCarrier(path string, audio bool) (stegoCarrier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if audio {
		wav, err := carrier.LoadAudio(file)
		if err != nil {
			return nil, err
		}
		fmt.Printf("\n🎵 Audio loaded: %d ch, %d Hz, %d-bit, %d frames\n",
			wav.Channels, wav.SampleRate, wav.BitsPerSample, wav.FrameCount())
		return wav, nil
	}

	img, err := carrier.LoadImage(file)
	if err != nil {
		return nil, err
	}
	fmt.Printf("\n📷 Image loaded: %s %dx%d\n", img.Format, img.Width(), img.Height())
	return img, nil
}

func printAnalysis(report decoder.SecurityReport) {
	fmt.Printf("\n🔍 LSB analysis of the stego carrier:\n")
	fmt.Printf("   Zeros: %d (%.1f%%)\n", report.Zeros, report.ZeroRatio)
	fmt.Printf("   Ones: %d (%.1f%%)\n", report.Ones, 100-report.ZeroRatio)
	fmt.Printf("   Byte entropy: %.3f bits\n", report.Entropy)
}
