package inmemory

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
)

var _ = Describe("InMemory Driver", func() {
	var (
		driver *Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = NewDriver()
		ctx = context.Background()
	})

	Describe("CreateMemo", func() {
		It("generates an id and defaults to draft", func() {
			m, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: "c"})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.ID).NotTo(BeEmpty())
			Expect(m.Status).To(Equal(memo.StatusDraft))
		})

		It("rejects invalid input", func() {
			_, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: ""})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetMemo", func() {
		It("returns a copy that callers can mutate safely", func() {
			m, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: "c", Tags: []string{"a"}})
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.GetMemo(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			got.Title = "mutated"
			got.Tags[0] = "mutated"

			reread, err := driver.GetMemo(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reread.Title).To(Equal("t"))
			Expect(reread.Tags).To(Equal([]string{"a"}))
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := driver.GetMemo(ctx, "nope")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "nope"}))
		})
	})

	Describe("UpdateMemo", func() {
		It("replaces tags and keeps orphans indexed", func() {
			m, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: "c", Tags: []string{"old"}})
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.UpdateMemo(ctx, m.ID, memo.UpdateInput{Tags: []string{"new"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Tags).To(Equal([]string{"new"}))

			tags, err := driver.AllTags(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(Equal([]string{"new", "old"}))
		})

		It("touches updated_at on an empty update", func() {
			m, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: "c"})
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.UpdateMemo(ctx, m.ID, memo.UpdateInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.UpdatedAt.After(m.UpdatedAt)).To(BeTrue())
		})
	})

	Describe("DeleteMemo", func() {
		It("is idempotent and keeps tags", func() {
			m, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: "c", Tags: []string{"keep"}})
			Expect(err).NotTo(HaveOccurred())

			existed, err := driver.DeleteMemo(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeTrue())

			existed, err = driver.DeleteMemo(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeFalse())

			tags, err := driver.AllTags(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(Equal([]string{"keep"}))
		})
	})

	Describe("ListMemos", func() {
		It("orders by updated_at descending and paginates", func() {
			a, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "a", Content: "c"})
			Expect(err).NotTo(HaveOccurred())
			b, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "b", Content: "c"})
			Expect(err).NotTo(HaveOccurred())

			memos, err := driver.ListMemos(ctx, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos[0].ID).To(Equal(b.ID))
			Expect(memos[1].ID).To(Equal(a.ID))

			page, err := driver.ListMemos(ctx, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(page).To(HaveLen(1))
			Expect(page[0].ID).To(Equal(a.ID))

			empty, err := driver.ListMemos(ctx, 10, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(empty).To(BeEmpty())
		})
	})

	Describe("SearchMemos", func() {
		It("matches tags as well as title and content", func() {
			m, err := driver.CreateMemo(ctx, memo.CreateInput{
				Title:   "Groceries",
				Content: "Eggs and rice",
				Tags:    []string{"errands"},
			})
			Expect(err).NotTo(HaveOccurred())

			for _, q := range []string{"groc", "RICE", "errand"} {
				memos, err := driver.SearchMemos(ctx, q, 0)
				Expect(err).NotTo(HaveOccurred(), "query %q", q)
				Expect(memos).To(HaveLen(1), "query %q", q)
				Expect(memos[0].ID).To(Equal(m.ID))
			}
		})
	})

	Describe("MemosWithTag", func() {
		It("is case-sensitive on the tag name", func() {
			_, err := driver.CreateMemo(ctx, memo.CreateInput{Title: "t", Content: "c", Tags: []string{"Work"}})
			Expect(err).NotTo(HaveOccurred())

			memos, err := driver.MemosWithTag(ctx, "work", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(BeEmpty())

			memos, err = driver.MemosWithTag(ctx, "Work", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(HaveLen(1))
		})
	})
})
