package mongostore_test

import (
	"context"
	"fmt"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	"github.com/arya-analytics/gatekeeper/pkg/store/mongostore"
	"github.com/arya-analytics/gatekeeper/pkg/store/storetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"
	"os"
	"time"
)

// uriEnv names a MongoDB instance to run the shared store specs against. The specs
// are skipped when it isn't set.
const uriEnv = "GATEKEEPER_TEST_MONGO_URI"

var _ = Describe("Conversion", func() {
	It("Should expose ObjectIDs as hex keys", func() {
		oid := bson.NewObjectID()
		d := mongostore.FromBSON(bson.M{"_id": oid, "username": "tim"})
		Expect(d.Key()).To(Equal(oid.Hex()))
		Expect(d).To(HaveKeyWithValue("username", "tim"))
	})
	It("Should convert hex keys back to ObjectIDs", func() {
		oid := bson.NewObjectID()
		Expect(mongostore.KeyToID(oid.Hex())).To(Equal(oid))
		Expect(mongostore.KeyToID("custom-key")).To(Equal("custom-key"))
	})
	It("Should keep non ObjectID keys as they are", func() {
		Expect(mongostore.IDToKey("custom-key")).To(Equal("custom-key"))
		Expect(mongostore.IDToKey(int32(12))).To(Equal("12"))
	})
	It("Should copy filters into BSON documents", func() {
		m := mongostore.ToBSON(store.Filter{"username": "tim"})
		Expect(m).To(Equal(bson.M{"username": "tim"}))
	})
})

var _ = Describe("Store", func() {
	uri := os.Getenv(uriEnv)
	if uri == "" {
		It("Should conform to the store specs", func() {
			Skip(fmt.Sprintf("%s is not set", uriEnv))
		})
		return
	}
	storetest.DescribeStore(func() storetest.Fixture {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := mongostore.Open(ctx, mongostore.Config{
			URI:      uri,
			Database: fmt.Sprintf("gatekeeper_test_%d", time.Now().UnixNano()),
		})
		Expect(err).ToNot(HaveOccurred())
		return storetest.Fixture{
			Store: s,
			Close: func() error {
				if err := s.Drop(context.Background()); err != nil {
					return err
				}
				return s.Close(context.Background())
			},
		}
	})
})
