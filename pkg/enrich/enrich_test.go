package enrich

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

// stubCompleter answers summarize and tag prompts with canned responses,
// keyed off the prompt's first line.
type stubCompleter struct {
	summaryResp string
	summaryErr  error
	tagsResp    string
	tagsErr     error
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "You are a professional summarizer.") {
		return s.summaryResp, s.summaryErr
	}
	return s.tagsResp, s.tagsErr
}

func (s *stubCompleter) Name() string { return "stub" }

var _ = Describe("Service", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newService := func(c Completer) *Service {
		return NewService(c, zap.NewNop())
	}

	Describe("Process", func() {
		It("returns both summary and tags on success", func() {
			svc := newService(&stubCompleter{
				summaryResp: "- short and sweet",
				tagsResp:    "go\ntesting",
			})

			result, err := svc.Process(ctx, "some note content")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary).To(HaveValue(Equal("- short and sweet")))
			Expect(result.Tags).To(Equal([]string{"go", "testing"}))
		})

		It("falls back to a nil summary when summarization fails", func() {
			svc := newService(&stubCompleter{
				summaryErr: errors.New("model offline"),
				tagsResp:   "go",
			})

			result, err := svc.Process(ctx, "note")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary).To(BeNil())
			Expect(result.Tags).To(Equal([]string{"go"}))
		})

		It("falls back to no tags when extraction fails", func() {
			svc := newService(&stubCompleter{
				summaryResp: "- fine",
				tagsErr:     errors.New("model offline"),
			})

			result, err := svc.Process(ctx, "note")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary).To(HaveValue(Equal("- fine")))
			Expect(result.Tags).To(BeEmpty())
		})

		It("errors only when both calls fail", func() {
			svc := newService(&stubCompleter{
				summaryErr: errors.New("down"),
				tagsErr:    errors.New("down"),
			})

			_, err := svc.Process(ctx, "note")
			Expect(err).To(HaveOccurred())

			var enrichErr EnrichmentError
			Expect(errors.As(err, &enrichErr)).To(BeTrue())
			Expect(enrichErr.Op).To(Equal("summarize"))
		})
	})

	Describe("Summarize", func() {
		It("trims surrounding whitespace from the response", func() {
			svc := newService(&stubCompleter{summaryResp: "  - point one\n"})
			summary, err := svc.Summarize(ctx, "note")
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal("- point one"))
		})

		It("wraps provider failures in EnrichmentError", func() {
			cause := errors.New("timeout")
			svc := newService(&stubCompleter{summaryErr: cause})
			_, err := svc.Summarize(ctx, "note")

			var enrichErr EnrichmentError
			Expect(errors.As(err, &enrichErr)).To(BeTrue())
			Expect(errors.Is(err, cause)).To(BeTrue())
		})
	})
})

var _ = Describe("ParseTags", func() {
	It("splits one tag per line", func() {
		Expect(ParseTags("go\nweb\ntesting")).To(Equal([]string{"go", "web", "testing"}))
	})

	It("strips bullet markers", func() {
		Expect(ParseTags("- go\n* web\n-- cli")).To(Equal([]string{"go", "web", "cli"}))
	})

	It("splits a single comma-separated line", func() {
		Expect(ParseTags("go, web, testing")).To(Equal([]string{"go", "web", "testing"}))
	})

	It("caps the result at MaxTags", func() {
		Expect(ParseTags("a\nb\nc\nd\ne\nf\ng")).To(HaveLen(MaxTags))
	})

	It("drops blank lines", func() {
		Expect(ParseTags("go\n\n  \nweb")).To(Equal([]string{"go", "web"}))
	})

	It("returns nothing for an empty response", func() {
		Expect(ParseTags("")).To(BeEmpty())
		Expect(ParseTags("- \n* ")).To(BeEmpty())
	})
})

var _ = Describe("Disabled", func() {
	It("reports ErrUnavailable from every method", func() {
		d := NewDisabled()
		ctx := context.Background()

		_, err := d.Summarize(ctx, "x")
		Expect(errors.Is(err, ErrUnavailable)).To(BeTrue())

		_, err = d.ExtractTags(ctx, "x")
		Expect(errors.Is(err, ErrUnavailable)).To(BeTrue())

		_, err = d.Process(ctx, "x")
		Expect(errors.Is(err, ErrUnavailable)).To(BeTrue())
	})
})
