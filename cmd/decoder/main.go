package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/faanross/stegocrypt/internal/decoder"
	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/scrypto"
	"github.com/sirupsen/logrus"
)

func main() {
	// Command line arguments
	inputFile := flag.String("input", "", "Path to stego image or WAV file")
	outputFile := flag.String("output", "", "Save extracted message to file")
	audio := flag.Bool("audio", false, "Treat the input as PCM WAV (implied by a .wav extension)")
	password := flag.String("password", "", "Password (prompt if not provided)")
	analyze := flag.Bool("analyze", false, "Perform security analysis only")
	tryList := flag.String("trylist", "", "Comma-separated passwords to try")
	verbose := flag.Bool("verbose", false, "Show full extracted message")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Validate input
	if *inputFile == "" {
		log.Fatal("❌ Please provide input file with -input flag")
	}
	ext := strings.ToLower(filepath.Ext(*inputFile))
	if ext == ".wav" || ext == ".wave" {
		*audio = true
	}

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	fmt.Println("\n🔓 Secure Steganography Decoder")
	fmt.Println("=" + strings.Repeat("=", 40))

	slots, err := loadCarrier(*inputFile, *audio)
	if err != nil {
		log.Fatalf("❌ Error loading carrier: %v", err)
	}

	// Security analysis mode
	if *analyze {
		report := decoder.AnalyzeSecurity(slots)
		fmt.Printf("\n🔍 LSB Analysis:\n")
		fmt.Printf("   Zeros: %d (%.1f%%)\n", report.Zeros, report.ZeroRatio)
		fmt.Printf("   Ones: %d (%.1f%%)\n", report.Ones, 100-report.ZeroRatio)
		fmt.Printf("   Byte entropy: %.3f bits\n", report.Entropy)
		if report.LooksEncrypted() {
			fmt.Println("   ⚠️  LSB plane looks like encrypted data")
		} else {
			fmt.Println("   ✓ No obvious hidden payload")
		}
		return
	}

	// Try multiple passwords mode
	if *tryList != "" {
		passwords := strings.Split(*tryList, ",")
		fmt.Printf("\n🔑 Trying %d passwords...\n", len(passwords))
		pass, result, err := decoder.TryMultiplePasswords(slots, passwords)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Printf("\n✅ Password found: %s\n", pass)
		printMessage(result, *verbose)
		return
	}

	// Get password
	var pass []byte
	if *password != "" {
		pass = []byte(*password)
	} else {
		pass, err = scrypto.GetSecurePassword("\n🔑 Enter password: ", 0)
		if err != nil {
			log.Fatalf("❌ Password error: %v", err)
		}
	}

	// Create decoder
	stegDecoder := decoder.NewSecureStegoDecoder(slots, pass, decoder.WithLogger(logger))

	// Extract bit stream
	stegDecoder.ExtractBitStream()

	// Extract secure payload
	err = stegDecoder.ExtractSecurePayload()
	if err != nil {
		log.Fatalf("❌ Extraction failed: %v", err)
	}

	// Decrypt payload
	result, err := stegDecoder.DecryptPayload()
	if err != nil {
		log.Fatalf("❌ Decryption failed: %v", err)
	}

	// Display results
	fmt.Printf("\n✅ MESSAGE SUCCESSFULLY DECRYPTED\n")
	fmt.Println("=" + strings.Repeat("=", 40))

	fmt.Printf("\n📊 Extraction Statistics:\n")
	fmt.Printf("   Encrypted size: %d bytes\n", result.EncryptedSize)
	fmt.Printf("   Decrypted size: %d bytes\n", result.DecryptedSize)
	fmt.Printf("   Authentication: %v\n", result.Authenticated)

	printMessage(result, *verbose)

	// Save to file if requested
	if *outputFile != "" {
		err = os.WriteFile(*outputFile, result.Message, 0644)
		if err != nil {
			log.Fatalf("❌ Error saving output: %v", err)
		}
		fmt.Printf("\n💾 Message saved to: %s\n", *outputFile)
	}

	fmt.Println("\n✅ Secure decoding complete!")
}

func loadCarrier(path string, audio bool) (lsb.Slots, error) {
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
		fmt.Printf("\n🎵 Audio loaded:\n")
		fmt.Printf("   File: %s\n", path)
		fmt.Printf("   Format: %d ch, %d Hz, %d-bit\n", wav.Channels, wav.SampleRate, wav.BitsPerSample)
		fmt.Printf("   Frames: %d\n", wav.FrameCount())
		return wav, nil
	}

	img, err := carrier.LoadImage(file)
	if err != nil {
		return nil, err
	}
	fmt.Printf("\n📷 Image loaded:\n")
	fmt.Printf("   File: %s\n", path)
	fmt.Printf("   Format: %s\n", img.Format)
	fmt.Printf("   Dimensions: %dx%d\n", img.Width(), img.Height())
	return img, nil
}

func printMessage(result *decoder.ExtractedMessage, verbose bool) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📝 DECRYPTED MESSAGE:")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Print(previewMessage(string(result.Message), verbose))

	fmt.Println(strings.Repeat("=", 60))
}

// previewMessage returns message in full when verbose or short, otherwise
// its first and last 200 characters. Cuts fall on rune boundaries.
func previewMessage(message string, verbose bool) string {
	const edge = 200

	runes := []rune(message)
	if verbose || len(runes) <= 500 {
		return message + "\n"
	}

	// Show preview for long messages
	return fmt.Sprintf("%s\n... [%d more characters] ...\n%s\n\n(Use -verbose flag to see full message)\n",
		string(runes[:edge]),
		len(runes)-2*edge,
		string(runes[len(runes)-edge:]))
}
