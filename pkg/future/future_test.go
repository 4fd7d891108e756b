package future_test

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/future"
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"time"
)

var _ = Describe("Future", func() {
	ctx := context.Background()
	It("Should deliver the value of the operation", func() {
		f := future.Go(ctx, func(ctx context.Context) (int, error) { return 42, nil })
		v, err := f.Await(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(42))
	})
	It("Should deliver the error of the operation", func() {
		f := future.Go(ctx, func(ctx context.Context) (int, error) {
			return 0, errors.New("boom")
		})
		_, err := f.Await(ctx)
		Expect(err).To(MatchError("boom"))
	})
	It("Should fulfill with an error when the operation panics", func() {
		f := future.Go(ctx, func(ctx context.Context) (int, error) {
			panic("kaboom")
		})
		v, err := f.Await(ctx)
		Expect(err).To(MatchError(ContainSubstring("panic: kaboom")))
		Expect(v).To(BeZero())
	})
	It("Should only honour the first fulfillment", func() {
		f, fulfill := future.New[string]()
		fulfill("first", nil)
		fulfill("second", errors.New("late"))
		Eventually(f.Done()).Should(BeClosed())
		v, err := f.Await(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal("first"))
	})
	It("Should stop waiting when the context is cancelled", func() {
		f, _ := future.New[string]()
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := f.Await(cctx)
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})
	It("Should call Then callbacks with the result", func() {
		f, fulfill := future.New[int]()
		results := make(chan int, 1)
		f.Then(func(v int, err error) { results <- v })
		fulfill(7, nil)
		Eventually(results).Should(Receive(Equal(7)))
	})
})
