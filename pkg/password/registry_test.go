package password_test

import (
	"encoding/base64"
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"strings"
)

// cheapRegistry keeps the memory-hard schemes fast enough for tests.
func cheapRegistry() *password.Registry {
	return password.NewRegistry(
		password.PlainHasher{},
		password.NewPBKDF2Hasher(password.PBKDF2Params{Iterations: 1000}),
		password.NewArgon2idHasher(password.Argon2Params{Memory: 1024, Time: 1, Threads: 1}),
		password.NewScryptHasher(password.ScryptParams{N: 1024, R: 8, P: 1}),
	)
}

var _ = Describe("Registry", func() {
	var r *password.Registry
	BeforeEach(func() { r = cheapRegistry() })

	Describe("Schemes", func() {
		It("Should list every registered scheme in order", func() {
			Expect(r.Schemes()).To(Equal([]string{"argon2id", "pbkdf2", "plain", "scrypt"}))
		})
		It("Should include the default hashers", func() {
			Expect(password.DefaultRegistry().Schemes()).To(ConsistOf(
				password.SchemePlain,
				password.SchemePBKDF2,
				password.SchemeArgon2id,
				password.SchemeScrypt,
			))
		})
	})

	Describe("Register", func() {
		It("Should reject a nil hasher", func() {
			Expect(r.Register(nil)).ToNot(Succeed())
		})
		It("Should make a new scheme available", func() {
			r = password.NewRegistry()
			Expect(r.Has(password.SchemePlain)).To(BeFalse())
			Expect(r.Register(password.PlainHasher{})).To(Succeed())
			Expect(r.Has(password.SchemePlain)).To(BeTrue())
		})
	})

	for _, scheme := range []string{"plain", "pbkdf2", "argon2id", "scrypt"} {
		scheme := scheme
		Describe("Scheme "+scheme, func() {
			It("Should verify a password against its own hash", func() {
				h, err := r.Hash(scheme, "somesalt", "sausages")
				Expect(err).ToNot(HaveOccurred())
				Expect(strings.HasPrefix(string(h), "$"+scheme+"$")).To(BeTrue())
				ok, err := r.Verify(scheme, "somesalt", "sausages", h)
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeTrue())
			})
			It("Should reject a different password", func() {
				h, err := r.Hash(scheme, "somesalt", "eggs")
				Expect(err).ToNot(HaveOccurred())
				ok, err := r.Verify(scheme, "somesalt", "sausages", h)
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeFalse())
			})
			It("Should be deterministic for identical arguments", func() {
				a, err := r.Hash(scheme, "somesalt", "sausages")
				Expect(err).ToNot(HaveOccurred())
				b, err := r.Hash(scheme, "somesalt", "sausages")
				Expect(err).ToNot(HaveOccurred())
				Expect(a).To(Equal(b))
			})
		})
	}

	Describe("Hash", func() {
		It("Should produce different digests for different salts", func() {
			a, err := r.Hash(password.SchemePBKDF2, "somesalt", "sausages")
			Expect(err).ToNot(HaveOccurred())
			b, err := r.Hash(password.SchemePBKDF2, "othersalt", "sausages")
			Expect(err).ToNot(HaveOccurred())
			Expect(a).ToNot(Equal(b))
		})
		It("Should return UnknownScheme for an unregistered scheme", func() {
			_, err := r.Hash("md5", "somesalt", "sausages")
			Expect(errors.Is(err, password.UnknownScheme)).To(BeTrue())
		})
	})

	Describe("Verify", func() {
		It("Should compare untagged values with the supplied scheme", func() {
			ok, err := r.Verify(password.SchemePlain, "", "sausages", "sausages")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			ok, err = r.Verify(password.SchemePlain, "", "eggs", "sausages")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
		It("Should prefer the scheme tagged in the stored value", func() {
			h, err := r.Hash(password.SchemeScrypt, "somesalt", "sausages")
			Expect(err).ToNot(HaveOccurred())
			ok, err := r.Verify(password.SchemePlain, "", "sausages", h)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
		It("Should verify hashes made with parameters other than the current ones", func() {
			old := password.NewRegistry(password.NewPBKDF2Hasher(password.PBKDF2Params{Iterations: 500}))
			h, err := old.Hash(password.SchemePBKDF2, "somesalt", "sausages")
			Expect(err).ToNot(HaveOccurred())
			ok, err := r.Verify(password.SchemePBKDF2, "", "sausages", h)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
		It("Should return MalformedHash for a truncated value", func() {
			_, err := r.Verify(password.SchemePBKDF2, "", "sausages", "$pbkdf2$it=1000")
			Expect(errors.Is(err, password.MalformedHash)).To(BeTrue())
		})
		It("Should return MalformedHash for invalid parameters", func() {
			_, err := r.Verify(password.SchemePBKDF2, "", "sausages", "$pbkdf2$it=zero$$")
			Expect(errors.Is(err, password.MalformedHash)).To(BeTrue())
		})
		It("Should return MalformedHash for scrypt parameters scrypt rejects", func() {
			_, err := r.Verify(password.SchemeScrypt, "", "sausages", "$scrypt$n=3,p=1,r=8$$")
			Expect(errors.Is(err, password.MalformedHash)).To(BeTrue())
		})
		It("Should return UnknownScheme for a value tagged with an unregistered scheme", func() {
			_, err := r.Verify(password.SchemePBKDF2, "", "sausages", "$md5$$$")
			Expect(errors.Is(err, password.UnknownScheme)).To(BeTrue())
		})
		DescribeTable("Should return MalformedHash for cost parameters beyond the scheme maximum",
			func(stored password.Hashed) {
				_, err := r.Verify(password.SchemePBKDF2, "", "sausages", stored)
				Expect(errors.Is(err, password.MalformedHash)).To(BeTrue())
			},
			Entry("pbkdf2 iterations", password.Hashed("$pbkdf2$it=2147483647$c2FsdA$AQID")),
			Entry("argon2id memory", password.Hashed("$argon2id$m=4294967295,p=1,t=1$c2FsdA$AQID")),
			Entry("argon2id time", password.Hashed("$argon2id$m=1024,p=1,t=1000000$c2FsdA$AQID")),
			Entry("argon2id threads", password.Hashed("$argon2id$m=1024,p=256,t=1$c2FsdA$AQID")),
			Entry("scrypt n", password.Hashed("$scrypt$n=4194304,p=1,r=1$c2FsdA$AQID")),
			Entry("scrypt r", password.Hashed("$scrypt$n=1024,p=1,r=64$c2FsdA$AQID")),
			Entry("scrypt p", password.Hashed("$scrypt$n=1024,p=1000,r=8$c2FsdA$AQID")),
			Entry("scrypt memory", password.Hashed("$scrypt$n=1048576,p=1,r=32$c2FsdA$AQID")),
			Entry("a zero parameter", password.Hashed("$pbkdf2$it=0$c2FsdA$AQID")),
		)

		Context("Legacy cleartext values", func() {
			It("Should compare a value starting with the separator as cleartext", func() {
				ok, err := r.Verify(password.SchemePlain, "", "$ecret", "$ecret")
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeTrue())
				ok, err = r.Verify(password.SchemePlain, "", "secret", "$ecret")
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeFalse())
			})
			It("Should compare a value tagged with an unregistered scheme as cleartext", func() {
				ok, err := r.Verify(password.SchemePlain, "", "$md5$$$", "$md5$$$")
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeTrue())
			})
			It("Should still honour registered tags", func() {
				h, err := r.Hash(password.SchemePBKDF2, "somesalt", "sausages")
				Expect(err).ToNot(HaveOccurred())
				ok, err := r.Verify(password.SchemePlain, "", password.Raw(h), h)
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeFalse())
			})
		})

		Context("Untagged digests under a hashing scheme", func() {
			var digest []byte
			BeforeEach(func() {
				h, err := r.Hash(password.SchemePBKDF2, "somesalt", "sausages")
				Expect(err).ToNot(HaveOccurred())
				d, _, err := password.Decode(h)
				Expect(err).ToNot(HaveOccurred())
				digest = d.Digest
			})
			It("Should verify a padded base64 digest", func() {
				stored := password.Hashed(base64.StdEncoding.EncodeToString(digest))
				ok, err := r.Verify(password.SchemePBKDF2, "somesalt", "sausages", stored)
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeTrue())
			})
			It("Should verify an unpadded base64 digest", func() {
				stored := password.Hashed(base64.RawStdEncoding.EncodeToString(digest))
				ok, err := r.Verify(password.SchemePBKDF2, "somesalt", "sausages", stored)
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeTrue())
			})
			It("Should reject the wrong password", func() {
				stored := password.Hashed(base64.StdEncoding.EncodeToString(digest))
				ok, err := r.Verify(password.SchemePBKDF2, "somesalt", "eggs", stored)
				Expect(err).ToNot(HaveOccurred())
				Expect(ok).To(BeFalse())
			})
			It("Should return MalformedHash for a value that isn't base64", func() {
				_, err := r.Verify(password.SchemePBKDF2, "somesalt", "sausages", "not base64!")
				Expect(errors.Is(err, password.MalformedHash)).To(BeTrue())
			})
		})
	})

	Describe("NeedsRehash", func() {
		It("Should require a rehash for untagged values", func() {
			Expect(r.NeedsRehash("sausages", password.SchemePBKDF2)).To(BeTrue())
		})
		It("Should require a rehash when the scheme differs", func() {
			h, err := r.Hash(password.SchemePlain, "", "sausages")
			Expect(err).ToNot(HaveOccurred())
			Expect(r.NeedsRehash(h, password.SchemePBKDF2)).To(BeTrue())
		})
		It("Should not require a rehash for current hashes", func() {
			h, err := r.Hash(password.SchemePBKDF2, "somesalt", "sausages")
			Expect(err).ToNot(HaveOccurred())
			Expect(r.NeedsRehash(h, password.SchemePBKDF2)).To(BeFalse())
		})
	})
})
