package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/memoflow/memoflow/pkg/enrich"
	"github.com/memoflow/memoflow/pkg/lifecycle"
	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/query"
	"github.com/memoflow/memoflow/pkg/storage/inmemory"
)

var _ = Describe("Memo Handlers", func() {
	var (
		server  *Server
		driver  *inmemory.Driver
		manager *lifecycle.Manager
	)

	BeforeEach(func() {
		logger, _ := zap.NewDevelopment()
		driver = inmemory.NewDriver()

		var err error
		manager, err = lifecycle.NewManager(&lifecycle.Config{
			Store:    driver,
			Enricher: enrich.NewDisabled(),
			Logger:   logger,
		})
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(Config{ListenAddr: ":0"}, manager, query.NewFacade(driver, logger), logger)
	})

	AfterEach(func() {
		manager.Close()
	})

	doJSON := func(method, path string, payload any) *http.Response {
		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			Expect(err).NotTo(HaveOccurred())
			body = bytes.NewReader(raw)
		}

		req, err := http.NewRequest(method, path, body)
		Expect(err).NotTo(HaveOccurred())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}

	createMemo := func(title, content string, tags ...string) memo.Memo {
		resp := doJSON(http.MethodPost, "/memos", map[string]any{
			"title":   title,
			"content": content,
			"tags":    tags,
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var m memo.Memo
		decode(resp, &m)
		return m
	}

	Describe("GET /health", func() {
		It("returns healthy", func() {
			resp := doJSON(http.MethodGet, "/health", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]string
			decode(resp, &body)
			Expect(body["status"]).To(Equal("healthy"))
		})
	})

	Describe("POST /memos", func() {
		It("creates a memo and returns 201 with the stored state", func() {
			m := createMemo("Trip notes", "Pack light.", "travel")
			Expect(m.ID).NotTo(BeEmpty())
			Expect(m.Status).To(Equal(memo.StatusDraft))
			Expect(m.Tags).To(Equal([]string{"travel"}))
			Expect(m.Summary).To(BeNil())
		})

		It("rejects a memo without a title", func() {
			resp := doJSON(http.MethodPost, "/memos", map[string]any{
				"title":   "",
				"content": "c",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var body ErrorResponse
			decode(resp, &body)
			Expect(body.Error).NotTo(BeEmpty())
		})

		It("rejects a malformed body", func() {
			req, err := http.NewRequest(http.MethodPost, "/memos", bytes.NewReader([]byte("{not json")))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /memos", func() {
		It("lists memos most recently updated first", func() {
			createMemo("first", "c")
			second := createMemo("second", "c")

			resp := doJSON(http.MethodGet, "/memos", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body listResponse
			decode(resp, &body)
			Expect(body.Count).To(Equal(2))
			Expect(body.Memos[0].ID).To(Equal(second.ID))
		})

		It("honors limit and offset", func() {
			for i := 0; i < 3; i++ {
				createMemo(fmt.Sprintf("memo %d", i), "c")
			}

			resp := doJSON(http.MethodGet, "/memos?limit=2&offset=2", nil)
			var body listResponse
			decode(resp, &body)
			Expect(body.Count).To(Equal(1))
		})
	})

	Describe("GET /memos/:id", func() {
		It("returns the memo", func() {
			m := createMemo("t", "c")

			resp := doJSON(http.MethodGet, "/memos/"+m.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got memo.Memo
			decode(resp, &got)
			Expect(got.ID).To(Equal(m.ID))
		})

		It("returns 404 for an unknown id", func() {
			resp := doJSON(http.MethodGet, "/memos/no-such-id", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("PUT /memos/:id", func() {
		It("applies a partial update", func() {
			m := createMemo("old title", "c", "keep")

			resp := doJSON(http.MethodPut, "/memos/"+m.ID, map[string]any{
				"title": "new title",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got memo.Memo
			decode(resp, &got)
			Expect(got.Title).To(Equal("new title"))
			Expect(got.Tags).To(Equal([]string{"keep"}))
		})

		It("updates the status", func() {
			m := createMemo("t", "c")

			resp := doJSON(http.MethodPut, "/memos/"+m.ID, map[string]any{
				"status": "published",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got memo.Memo
			decode(resp, &got)
			Expect(got.Status).To(Equal(memo.StatusPublished))
		})

		It("rejects an invalid status", func() {
			m := createMemo("t", "c")

			resp := doJSON(http.MethodPut, "/memos/"+m.ID, map[string]any{
				"status": "bogus",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown id", func() {
			resp := doJSON(http.MethodPut, "/memos/no-such-id", map[string]any{
				"title": "t",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /memos/:id", func() {
		It("deletes and reports 404 on the second attempt", func() {
			m := createMemo("t", "c")

			resp := doJSON(http.MethodDelete, "/memos/"+m.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp = doJSON(http.MethodDelete, "/memos/"+m.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /memos/search/:query", func() {
		It("matches titles, contents, and tags", func() {
			createMemo("Trip to Lisbon", "Book flights.", "travel")
			createMemo("Groceries", "Eggs and rice.")

			resp := doJSON(http.MethodGet, "/memos/search/travel", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body listResponse
			decode(resp, &body)
			Expect(body.Count).To(Equal(1))
			Expect(body.Memos[0].Title).To(Equal("Trip to Lisbon"))
		})

		It("is not shadowed by the memo id route", func() {
			resp := doJSON(http.MethodGet, "/memos/search/anything", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("GET /tags", func() {
		It("returns all tag names including orphans", func() {
			m := createMemo("t", "c", "orphan")
			resp := doJSON(http.MethodDelete, "/memos/"+m.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp = doJSON(http.MethodGet, "/tags", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Count int      `json:"count"`
				Tags  []string `json:"tags"`
			}
			decode(resp, &body)
			Expect(body.Count).To(Equal(1))
			Expect(body.Tags).To(Equal([]string{"orphan"}))
		})

		It("returns an empty list rather than null", func() {
			resp := doJSON(http.MethodGet, "/tags", nil)

			raw, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"tags":[]`))
		})
	})

	Describe("GET /tags/:name/memos", func() {
		It("returns memos with the exact tag", func() {
			m := createMemo("t", "c", "Work")
			createMemo("other", "c", "play")

			resp := doJSON(http.MethodGet, "/tags/Work/memos", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body listResponse
			decode(resp, &body)
			Expect(body.Count).To(Equal(1))
			Expect(body.Memos[0].ID).To(Equal(m.ID))
		})
	})

	Describe("GET /stats", func() {
		It("reports the memo count", func() {
			createMemo("a", "c")
			createMemo("b", "c")

			resp := doJSON(http.MethodGet, "/stats", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]int
			decode(resp, &body)
			Expect(body["memo_count"]).To(Equal(2))
		})
	})
})
