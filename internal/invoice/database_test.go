package invoice

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveDraft", func() {
		var (
			draft *Draft
			err   error
		)

		BeforeEach(func() {
			draft = &Draft{
				ID:    "test-id",
				Title: "Canteen invoice",
				Items: []LineItem{
					{ID: "h1", IsHeading: true, Name: "Dosa Items"},
					{ID: "r1", Name: "Plain Dosa", Quantity: 2, Unit: "pcs", Rate: 80},
				},
				FileIDs:   []string{"file-1_invoice.jpg"},
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveDraft(draft)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the draft to the database", func() {
				saved, getErr := db.GetDraft("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
			})

			It("should preserve the item order", func() {
				saved, getErr := db.GetDraft("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Items).To(HaveLen(2))
				Expect(saved.Items[0].IsHeading).To(BeTrue())
				Expect(saved.Items[1].Name).To(Equal("Plain Dosa"))
			})
		})
	})

	Describe("GetDraft", func() {
		var (
			draftID string
			draft   *Draft
			err     error
		)

		JustBeforeEach(func() {
			draft, err = db.GetDraft(draftID)
		})

		When("draft exists", func() {
			BeforeEach(func() {
				draftID = "test-id"
				testDraft := &Draft{
					ID:    "test-id",
					Title: "Canteen invoice",
					Items: []LineItem{
						{ID: "r1", Name: "Masala Dosa", Quantity: 1, Unit: "pcs", Rate: 100},
					},
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				Expect(db.SaveDraft(testDraft)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the correct draft ID", func() {
				Expect(draft.ID).To(Equal("test-id"))
			})

			It("should return the correct title", func() {
				Expect(draft.Title).To(Equal("Canteen invoice"))
			})

			It("should return the items", func() {
				Expect(draft.Items).To(HaveLen(1))
				Expect(draft.Items[0].Rate).To(Equal(100.0))
			})
		})

		When("draft does not exist", func() {
			var expectedErr error

			BeforeEach(func() {
				draftID = "nonexistent"
				expectedErr = errors.New("draft not found: nonexistent")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(expectedErr))
			})
		})
	})

	Describe("ListDrafts", func() {
		var (
			drafts []*Draft
			err    error
		)

		JustBeforeEach(func() {
			drafts, err = db.ListDrafts()
		})

		When("drafts exist", func() {
			BeforeEach(func() {
				draft1 := &Draft{
					ID:        "id1",
					Title:     "Invoice 1",
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				draft2 := &Draft{
					ID:        "id2",
					Title:     "Invoice 2",
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				Expect(db.SaveDraft(draft1)).NotTo(HaveOccurred())
				Expect(db.SaveDraft(draft2)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return all drafts", func() {
				Expect(drafts).To(HaveLen(2))
			})
		})

		When("no drafts exist", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an empty list", func() {
				Expect(drafts).To(BeEmpty())
			})
		})
	})

	Describe("DeleteDraft", func() {
		var (
			draftID string
			err     error
		)

		JustBeforeEach(func() {
			err = db.DeleteDraft(draftID)
		})

		When("draft exists", func() {
			BeforeEach(func() {
				draftID = "test-id"
				draft := &Draft{
					ID:        "test-id",
					Title:     "Test",
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				Expect(db.SaveDraft(draft)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove the draft from the database", func() {
				_, getErr := db.GetDraft("test-id")
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("draft does not exist", func() {
			BeforeEach(func() {
				draftID = "nonexistent"
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			err := db.Close()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
