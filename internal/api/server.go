package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/faanross/stegocrypt/internal/config"
	"github.com/faanross/stegocrypt/internal/decoder"
	"github.com/faanross/stegocrypt/internal/encoder"
	"github.com/faanross/stegocrypt/internal/spec"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Server serves the encode and decode endpoints.
type Server struct {
	log       *logrus.Logger
	jobs      *semaphore.Weighted
	maxUpload int64
	maxPixels int
}

// NewServer creates a Server bounded by the upload size and job count
// in cfg.
func NewServer(cfg config.Config, log *logrus.Logger) *Server {
	jobs := int64(cfg.MaxConcurrentJobs)
	if jobs < 1 {
		jobs = 1
	}
	return &Server{
		log:       log,
		jobs:      semaphore.NewWeighted(jobs),
		maxUpload: cfg.MaxUploadBytes(),
		maxPixels: cfg.MaxImagePixels,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/encode", s.handleEncodeImage)
	api.POST("/decode", s.handleDecodeImage)
	api.POST("/encode-audio", s.handleEncodeAudio)
	api.POST("/decode-audio", s.handleDecodeAudio)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("request")
	}
}

// form is a parsed upload: the carrier file plus text fields.
type form struct {
	file     *multipart.FileHeader
	message  string
	password string
}

// parseForm reads the multipart body. It writes the error response itself
// and returns false when the request cannot proceed.
func (s *Server) parseForm(c *gin.Context, fileField string, withMessage bool) (*form, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	fields := []string{fileField, "password"}
	if withMessage {
		fields = []string{fileField, "message", "password"}
	}
	missing := gin.H{"error": fmt.Sprintf("Missing required fields (%s)", strings.Join(fields, ", "))}

	if err := c.Request.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", s.maxUpload)})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, missing)
		return nil, false
	}

	f := &form{}
	var err error
	var ok bool
	if f.file, err = c.FormFile(fileField); err != nil {
		c.JSON(http.StatusBadRequest, missing)
		return nil, false
	}
	if f.password, ok = c.GetPostForm("password"); !ok {
		c.JSON(http.StatusBadRequest, missing)
		return nil, false
	}
	if withMessage {
		if f.message, ok = c.GetPostForm("message"); !ok {
			c.JSON(http.StatusBadRequest, missing)
			return nil, false
		}
		if f.message == "" || f.password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message and password cannot be empty"})
			return nil, false
		}
	} else if f.password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password cannot be empty"})
		return nil, false
	}

	return f, true
}

// runJob holds a job slot for the duration of fn. It fails with errBusy
// when no slot frees up before the request is cancelled.
func (s *Server) runJob(c *gin.Context, fn func() error) error {
	if err := s.jobs.Acquire(c.Request.Context(), 1); err != nil {
		return fmt.Errorf("%w: %v", errBusy, err)
	}
	defer s.jobs.Release(1)
	return fn()
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	status, msg := Classify(err)
	entry := s.log.WithFields(logrus.Fields{"op": op, "status": status})
	if status == http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Debug("request rejected")
	}
	c.JSON(status, gin.H{"error": msg})
}

func (s *Server) encode(c *gin.Context, fileField, filename, mimeType string,
	hide func(*encoder.SecureStegoEncoder, io.Reader, io.Writer) error) {
	f, ok := s.parseForm(c, fileField, true)
	if !ok {
		return
	}

	var out bytes.Buffer
	err := s.runJob(c, func() error {
		src, err := f.file.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		sse := encoder.NewSecureStegoEncoder([]byte(f.message), []byte(f.password),
			encoder.WithLogger(s.log), encoder.WithMaxPixels(s.maxPixels))
		return hide(sse, src, &out)
	})
	if err != nil {
		s.fail(c, "encode", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mimeType, out.Bytes())
}

func (s *Server) decode(c *gin.Context, fileField string,
	reveal func(io.Reader, []byte, ...decoder.Option) (*decoder.ExtractedMessage, error)) {
	f, ok := s.parseForm(c, fileField, false)
	if !ok {
		return
	}

	var result *decoder.ExtractedMessage
	err := s.runJob(c, func() error {
		src, err := f.file.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		result, err = reveal(src, []byte(f.password), decoder.WithLogger(s.log), decoder.WithMaxPixels(s.maxPixels))
		return err
	})
	if err != nil {
		s.fail(c, "decode", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": string(result.Message)})
}

func (s *Server) handleEncodeImage(c *gin.Context) {
	s.encode(c, "image", spec.ENCODED_IMAGE_NAME, "image/png", (*encoder.SecureStegoEncoder).HideInImage)
}

func (s *Server) handleEncodeAudio(c *gin.Context) {
	s.encode(c, "audio", spec.ENCODED_AUDIO_NAME, "audio/wav", (*encoder.SecureStegoEncoder).HideInAudio)
}

func (s *Server) handleDecodeImage(c *gin.Context) {
	s.decode(c, "image", decoder.RevealFromImage)
}

func (s *Server) handleDecodeAudio(c *gin.Context) {
	s.decode(c, "audio", decoder.RevealFromAudio)
}
