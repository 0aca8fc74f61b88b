package whisper_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/transcribe/whisper"
)

func writeWav(dir string) string {
	path := filepath.Join(dir, "question.wav")
	data := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 64)...)
	Expect(os.WriteFile(path, data, 0o600)).To(Succeed())
	return path
}

var _ = Describe("Whisper", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		dir     string

		gotModel    string
		gotFilename string
		gotAuth     string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		gotModel, gotFilename, gotAuth = "", "", ""
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				gotModel = r.FormValue("model")
				if _, fh, err := r.FormFile("file"); err == nil {
					gotFilename = fh.Filename
				}
			}
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newTranscriber := func() *whisper.Transcriber {
		return whisper.New(whisper.Config{
			Endpoint: server.URL + "/v1/audio/transcriptions",
			APIKey:   "sk-audio",
			Timeout:  2 * time.Second,
		})
	}

	It("uploads the recording and returns the transcript", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"text": " How do I treat aphids on tomato plants? "}`)
		}

		res := newTranscriber().Transcribe(context.Background(), writeWav(dir))
		Expect(res.OK()).To(BeTrue())
		Expect(res.Text).To(Equal("How do I treat aphids on tomato plants?"))
		Expect(gotModel).To(Equal(whisper.DefaultModel))
		Expect(gotFilename).To(Equal("question.wav"))
		Expect(gotAuth).To(Equal("Bearer sk-audio"))
	})

	It("fails softly when the file does not exist", func() {
		handler = func(http.ResponseWriter, *http.Request) {
			Fail("no upload expected")
		}

		res := newTranscriber().Transcribe(context.Background(), filepath.Join(dir, "missing.wav"))
		Expect(res.OK()).To(BeFalse())
		Expect(res.Failure.Kind).To(Equal(llm.FailureTranscription))
		Expect(res.Render()).To(HavePrefix("Transcription error: could not read audio"))
	})

	It("rejects files that are not audio", func() {
		handler = func(http.ResponseWriter, *http.Request) {
			Fail("no upload expected")
		}
		path := filepath.Join(dir, "notes.txt")
		Expect(os.WriteFile(path, []byte("just some text"), 0o600)).To(Succeed())

		res := newTranscriber().Transcribe(context.Background(), path)
		Expect(res.Render()).To(HavePrefix("Transcription error: unsupported audio format text/plain"))
	})

	It("reports unintelligible audio", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"text": "   "}`)
		}

		res := newTranscriber().Transcribe(context.Background(), writeWav(dir))
		Expect(res.Render()).To(Equal("Transcription error: could not understand audio"))
	})

	It("reports upstream errors", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "recognizer offline")
		}

		res := newTranscriber().Transcribe(context.Background(), writeWav(dir))
		Expect(res.Render()).To(Equal("Transcription error: recognition service returned 503: recognizer offline"))
	})

	It("reports malformed responses", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		}

		res := newTranscriber().Transcribe(context.Background(), writeWav(dir))
		Expect(res.Render()).To(HavePrefix("Transcription error: unexpected recognition response"))
	})

	It("fails softly when no endpoint is configured", func() {
		t := whisper.New(whisper.Config{})
		res := t.Transcribe(context.Background(), writeWav(dir))
		Expect(res.Render()).To(Equal("Transcription error: speech recognition is not configured"))
	})
})
