package storage_test

import (
	"github.com/arya-analytics/gatekeeper/pkg/storage"
	"github.com/cockroachdb/pebble"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"os"
	"path/filepath"
)

var _ = Describe("Storage", func() {
	Describe("Open", func() {
		It("Should open a memory backed key-value store", func() {
			s, err := storage.Open(storage.Config{Dirname: "testdata", MemBacked: true})
			Expect(err).ToNot(HaveOccurred())
			Expect(s.KV.Set([]byte("key"), []byte("value"), pebble.Sync)).To(Succeed())
			v, closer, err := s.KV.Get([]byte("key"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal([]byte("value")))
			Expect(closer.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
		})
		It("Should persist data in the storage directory", func() {
			dir, err := os.MkdirTemp("", "gatekeeper-storage")
			Expect(err).ToNot(HaveOccurred())
			defer func() { Expect(os.RemoveAll(dir)).To(Succeed()) }()

			s, err := storage.Open(storage.Config{Dirname: dir})
			Expect(err).ToNot(HaveOccurred())
			Expect(s.KV.Set([]byte("key"), []byte("value"), pebble.Sync)).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(filepath.Join(dir, "LOCK")).To(BeAnExistingFile())

			s, err = storage.Open(storage.Config{Dirname: dir})
			Expect(err).ToNot(HaveOccurred())
			v, closer, err := s.KV.Get([]byte("key"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal([]byte("value")))
			Expect(closer.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
		})
	})
})
