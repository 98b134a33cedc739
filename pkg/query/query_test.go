package query

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
	"github.com/memoflow/memoflow/pkg/storage/inmemory"
)

var _ = Describe("Query Facade", func() {
	var (
		driver *inmemory.Driver
		facade *Facade
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		facade = NewFacade(driver, zap.NewNop())
		ctx = context.Background()
	})

	seed := func(title, content string, tags ...string) *memo.Memo {
		m, err := driver.CreateMemo(ctx, memo.CreateInput{
			Title:   title,
			Content: content,
			Tags:    tags,
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	Describe("Get", func() {
		It("returns the memo or ErrNotFound", func() {
			m := seed("t", "c")

			got, err := facade.Get(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(m.ID))

			_, err = facade.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			seed("Trip to Lisbon", "Book flights in May.", "travel")
			seed("Portugal travel checklist", "Passport, adapter, sunscreen.")
			seed("Reading list", "Finish the distributed systems paper.", "books")
		})

		It("finds matches in title, content, and tags", func() {
			memos, err := facade.Search(ctx, "travel", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(HaveLen(2))
		})

		It("returns nothing for an empty query", func() {
			memos, err := facade.Search(ctx, "", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(BeEmpty())
		})

		It("honors the limit", func() {
			memos, err := facade.Search(ctx, "i", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(HaveLen(1))
		})
	})

	Describe("ListByTag", func() {
		It("matches the exact tag name and orders by recency", func() {
			first := seed("a", "c", "shared")
			seed("b", "c", "other")
			second := seed("d", "c", "shared")

			memos, err := facade.ListByTag(ctx, "shared", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(HaveLen(2))
			Expect(memos[0].ID).To(Equal(second.ID))
			Expect(memos[1].ID).To(Equal(first.ID))
		})
	})

	Describe("AllTags", func() {
		It("includes orphaned tags", func() {
			m := seed("t", "c", "orphan")
			existed, err := driver.DeleteMemo(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeTrue())

			tags, err := facade.AllTags(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(ContainElement("orphan"))
		})
	})

	Describe("Count", func() {
		It("tracks creates and deletes", func() {
			seed("a", "c")
			seed("b", "c")
			m := seed("d", "c")

			n, err := facade.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))

			_, err = driver.DeleteMemo(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())

			n, err = facade.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})
})
