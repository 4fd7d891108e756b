// Package storetest holds the behaviour every store.Store backend is expected to
// share, written as ginkgo specs that backend suites register.
package storetest

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Fixture is a freshly opened, empty store.
type Fixture struct {
	Store store.Store
	// Close releases the store. It may be nil.
	Close func() error
}

const collection = "user"

// DescribeStore registers the shared store specs. open is called before every spec.
func DescribeStore(open func() Fixture) {
	var (
		ctx = context.Background()
		fx  Fixture
	)
	BeforeEach(func() { fx = open() })
	AfterEach(func() {
		if fx.Close != nil {
			Expect(fx.Close()).To(Succeed())
		}
	})

	Describe("Save", func() {
		It("Should assign a key to documents without one", func() {
			key, err := fx.Store.Save(ctx, collection, store.Document{"username": "tim"})
			Expect(err).ToNot(HaveOccurred())
			Expect(key).ToNot(BeEmpty())
			docs, err := fx.Store.Find(ctx, collection, store.Filter{"username": "tim"})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Key()).To(Equal(key))
		})
		It("Should not modify the caller's document", func() {
			doc := store.Document{"username": "tim"}
			_, err := fx.Store.Save(ctx, collection, doc)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc).ToNot(HaveKey(store.KeyField))
		})
		It("Should keep duplicate usernames as separate documents", func() {
			for i := 0; i < 3; i++ {
				_, err := fx.Store.Save(ctx, collection, store.Document{"username": "Doublette"})
				Expect(err).ToNot(HaveOccurred())
			}
			docs, err := fx.Store.Find(ctx, collection, store.Filter{"username": "Doublette"})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(3))
		})
	})

	Describe("Find", func() {
		BeforeEach(func() {
			for _, name := range []string{"Michael", "tim"} {
				_, err := fx.Store.Save(ctx, collection, store.Document{"username": name, "password": "pw"})
				Expect(err).ToNot(HaveOccurred())
			}
			_, err := fx.Store.Save(ctx, "other", store.Document{"username": "tim"})
			Expect(err).ToNot(HaveOccurred())
		})
		It("Should return every document of the collection for an empty filter", func() {
			docs, err := fx.Store.Find(ctx, collection, store.Filter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(2))
		})
		It("Should only match documents whose fields are all equal", func() {
			docs, err := fx.Store.Find(ctx, collection, store.Filter{"username": "tim", "password": "pw"})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0]).To(HaveKeyWithValue("username", "tim"))
			docs, err = fx.Store.Find(ctx, collection, store.Filter{"username": "tim", "password": "nope"})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
		It("Should match numeric fields by value", func() {
			_, err := fx.Store.Save(ctx, collection, store.Document{"username": "tim", "tenant": 7})
			Expect(err).ToNot(HaveOccurred())
			docs, err := fx.Store.Find(ctx, collection, store.Filter{"tenant": 7})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0]).To(HaveKeyWithValue("username", "tim"))
			docs, err = fx.Store.Find(ctx, collection, store.Filter{"tenant": int64(7)})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			docs, err = fx.Store.Find(ctx, collection, store.Filter{"tenant": 8})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
		It("Should return nothing for an unknown user", func() {
			docs, err := store.FindByUsername(ctx, fx.Store, collection, "username", "blah")
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
		It("Should return nothing for an unknown collection", func() {
			docs, err := fx.Store.Find(ctx, "missing", store.Filter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
	})
}
