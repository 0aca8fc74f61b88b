package transcribe_test

import (
	"context"

	"github.com/gabriel-vasile/mimetype"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/transcribe"
)

var _ = Describe("Transcribe", func() {
	Describe("Func", func() {
		It("adapts a plain function", func() {
			var got string
			t := transcribe.Func(func(_ context.Context, path string) llm.Result {
				got = path
				return llm.Succeeded("how to treat aphids")
			})

			res := t.Transcribe(context.Background(), "/tmp/q.wav")
			Expect(got).To(Equal("/tmp/q.wav"))
			Expect(res.Render()).To(Equal("how to treat aphids"))
		})
	})

	Describe("Unavailable", func() {
		It("fails softly with a transcription surrogate", func() {
			res := transcribe.Unavailable.Transcribe(context.Background(), "/tmp/q.wav")
			Expect(res.OK()).To(BeFalse())
			Expect(res.Render()).To(HavePrefix("Transcription error: "))
		})
	})

	Describe("IsAudio", func() {
		It("accepts wav recordings", func() {
			wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
			Expect(transcribe.IsAudio(mimetype.Detect(wav))).To(BeTrue())
		})

		It("accepts mp3 with an ID3 tag", func() {
			mp3 := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 32)...)
			Expect(transcribe.IsAudio(mimetype.Detect(mp3))).To(BeTrue())
		})

		It("rejects plain text", func() {
			Expect(transcribe.IsAudio(mimetype.Detect([]byte("how to treat aphids")))).To(BeFalse())
		})

		It("rejects nil", func() {
			Expect(transcribe.IsAudio(nil)).To(BeFalse())
		})
	})
})
