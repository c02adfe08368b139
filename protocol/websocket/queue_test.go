package websocket

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Frame Queue", func() {
	var queue *frameQueue

	BeforeEach(func() {
		queue = newFrameQueue()
	})

	It("hands frames out in the order they were pushed", func() {
		for i := 0; i < 500; i++ {
			Expect(queue.push([]byte{byte(i)})).To(BeTrue())
		}
		Expect(queue.len()).To(Equal(500))

		for i := 0; i < 500; i++ {
			frame, draining, ok := queue.pop()
			Expect(ok).To(BeTrue())
			Expect(draining).To(BeFalse())
			Expect(frame).To(Equal([]byte{byte(i)}))
		}
	})

	It("wakes a waiting reader", func() {
		popped := make(chan []byte, 1)
		go func() {
			frame, _, _ := queue.pop()
			popped <- frame
		}()

		Consistently(popped, 100*time.Millisecond).ShouldNot(Receive())
		queue.push([]byte("late"))
		Eventually(popped, time.Second).Should(Receive(Equal([]byte("late"))))
	})

	When("Closed with draining", func() {
		BeforeEach(func() {
			queue.push([]byte("one"))
			queue.push([]byte("two"))
			queue.close(true)
		})

		It("keeps the queued frames and marks them", func() {
			frame, draining, ok := queue.pop()
			Expect(ok).To(BeTrue())
			Expect(draining).To(BeTrue())
			Expect(string(frame)).To(Equal("one"))

			frame, _, ok = queue.pop()
			Expect(ok).To(BeTrue())
			Expect(string(frame)).To(Equal("two"))

			_, _, ok = queue.pop()
			Expect(ok).To(BeFalse())
		})

		It("refuses new frames", func() {
			Expect(queue.push([]byte("three"))).To(BeFalse())
			Expect(queue.len()).To(Equal(2))
		})
	})

	When("Closed without draining", func() {
		It("drops the queued frames and releases the reader", func() {
			queue.push([]byte("one"))
			queue.close(false)

			_, _, ok := queue.pop()
			Expect(ok).To(BeFalse())
			Expect(queue.len()).To(Equal(0))
		})
	})
})
