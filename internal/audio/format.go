package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is a container format recognised from a file signature.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatOgg     Format = "ogg"
	FormatMP4     Format = "mp4"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrFileEmpty         = errors.New("file is empty")
	ErrInvalidPath       = errors.New("invalid path")
	ErrNotAudio          = errors.New("payload is not audio")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// DetectFormat identifies the container from the first bytes of a file.
// Payloads that look like HTML or error pages return ErrNotAudio.
func DetectFormat(header []byte) (Format, error) {
	if len(header) < 4 {
		return FormatUnknown, fmt.Errorf("%w: file too small to be a valid audio file", ErrNotAudio)
	}

	switch {
	case string(header[:4]) == "RIFF" && len(header) >= 12 && string(header[8:12]) == "WAVE":
		return FormatWAV, nil
	case string(header[:3]) == "ID3":
		return FormatMP3, nil
	case header[0] == 0xFF && (header[1]&0xE0) == 0xE0:
		return FormatMP3, nil
	case string(header[:4]) == "fLaC":
		return FormatFLAC, nil
	case string(header[:4]) == "OggS":
		return FormatOgg, nil
	case len(header) >= 8 && string(header[4:8]) == "ftyp":
		return FormatMP4, nil
	}

	// Check if it looks like HTML/text (common when a link is wrong)
	checkLen := min(len(header), 100)
	headerStr := strings.ToLower(string(header[:checkLen]))
	if strings.Contains(headerStr, "<html") || strings.Contains(headerStr, "<!doctype") {
		return FormatUnknown, fmt.Errorf("%w: payload appears to be HTML", ErrNotAudio)
	}

	return FormatUnknown, nil
}

// DetectFileFormat reads the signature of the file at path.
func DetectFileFormat(path string) (Format, error) {
	if err := validateFile(path); err != nil {
		return FormatUnknown, err
	}

	file, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to open file for validation: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, fmt.Errorf("failed to read file header: %w", err)
	}

	return DetectFormat(buffer[:n])
}

func validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}
