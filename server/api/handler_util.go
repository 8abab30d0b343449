package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/adrianliechti/t101/pkg/provider"
)

const maxAudioSize = 25 << 20

var audioFormats = map[string]bool{
	"flac": true,
	"m4a":  true,
	"mp3":  true,
	"mp4":  true,
	"mpeg": true,
	"mpga": true,
	"oga":  true,
	"ogg":  true,
	"wav":  true,
	"webm": true,
}

var audioContentTypes = map[string]string{
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
	"audio/m4a":    "m4a",
	"audio/x-m4a":  "m4a",
	"audio/mp4":    "mp4",
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/ogg":    "ogg",
	"audio/wav":    "wav",
	"audio/wave":   "wav",
	"audio/x-wav":  "wav",
	"audio/webm":   "webm",
	"video/webm":   "webm",
	"video/mp4":    "mp4",
}

func readJson(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ValidationError("request body is required", nil)
		}

		return ValidationError("invalid JSON body", err)
	}

	return nil
}

// readAudio reads the uploaded audio from the "audio" or "file" multipart field
// and rejects missing, oversized or unsupported files.
func readAudio(w http.ResponseWriter, r *http.Request) (*provider.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize+(1<<20))

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError

		if errors.As(err, &maxErr) {
			return nil, ValidationError("audio file must not exceed 25MB", err)
		}

		return nil, ValidationError("invalid multipart form", err)
	}

	file, header, err := r.FormFile("audio")

	if err != nil {
		file, header, err = r.FormFile("file")
	}

	if err != nil {
		return nil, ValidationError("audio file is required", err)
	}

	defer file.Close()

	if header.Size > maxAudioSize {
		return nil, ValidationError("audio file must not exceed 25MB", nil)
	}

	contentType := header.Header.Get("Content-Type")

	if mediatype, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediatype
	}

	format := audioFormat(header.Filename, contentType)

	if format == "" {
		return nil, ValidationError("unsupported audio format, supported: flac, m4a, mp3, mp4, mpeg, mpga, oga, ogg, wav, webm", nil)
	}

	data, err := io.ReadAll(file)

	if err != nil {
		return nil, ValidationError("failed to read audio file", err)
	}

	if len(data) == 0 {
		return nil, ValidationError("audio file is empty", nil)
	}

	name := header.Filename

	if filepath.Ext(name) == "" {
		name = "audio." + format
	}

	return &provider.File{
		Name: name,

		Content:     data,
		ContentType: contentType,
	}, nil
}

func audioFormat(filename, contentType string) string {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext != "" {
		if audioFormats[ext] {
			return ext
		}

		return ""
	}

	return audioContentTypes[strings.ToLower(contentType)]
}
