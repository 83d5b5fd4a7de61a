package state_test

import (
	"workmill/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("LifecycleManager", func() {
	var (
		lifecycle *state.LifecycleManager
	)

	BeforeEach(func() {
		lifecycle = state.NewLifecycleManager()
	})

	Describe("NewLifecycleManager", func() {
		It("should carry the fixed state set", func() {
			Expect(lifecycle).NotTo(BeZero())
			Expect(lifecycle.States).Should(Equal([]state.State{
				state.StateEnabled, state.StateOffered, state.StateAllocated, state.StateExecuting,
				state.StateSuspended, state.StateCompleted, state.StateCancelled,
			}))
		})
	})

	Describe("CanTransition", func() {
		It("should accept every pair in the transition table", func() {
			Ω(lifecycle.CanTransition(state.StateEnabled, state.StateOffered)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateEnabled, state.StateAllocated)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateEnabled, state.StateExecuting)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateEnabled, state.StateCancelled)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateOffered, state.StateExecuting)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateOffered, state.StateOffered)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateOffered, state.StateCancelled)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateAllocated, state.StateExecuting)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateAllocated, state.StateOffered)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateAllocated, state.StateAllocated)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateAllocated, state.StateCancelled)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateExecuting, state.StateSuspended)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateExecuting, state.StateCompleted)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateExecuting, state.StateOffered)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateExecuting, state.StateCancelled)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateSuspended, state.StateExecuting)).Should(BeTrue())
			Ω(lifecycle.CanTransition(state.StateSuspended, state.StateCancelled)).Should(BeTrue())
		})

		It("should reject every pair not in the transition table", func() {
			all := lifecycle.States
			allowed := map[[2]state.State]bool{}
			for _, t := range lifecycle.Transitions {
				allowed[[2]state.State{t.From, t.To}] = true
			}
			for _, from := range all {
				for _, to := range all {
					if allowed[[2]state.State{from, to}] {
						continue
					}
					Ω(lifecycle.CanTransition(from, to)).Should(BeFalse(),
						"expected %s -> %s to be rejected", from, to)
				}
			}
		})

		It("should leave terminal states without outgoing transitions", func() {
			Ω(len(lifecycle.AvailableTransitions(state.StateCompleted, ""))).Should(Equal(0))
			Ω(len(lifecycle.AvailableTransitions(state.StateCancelled, ""))).Should(Equal(0))
		})
	})

	Describe("AvailableTransitions", func() {
		It("should return transitions filtered by from state", func() {
			Ω(lifecycle.AvailableTransitions(state.StateSuspended, "")).Should(Equal([]state.Transition{
				{Name: "resume", From: state.StateSuspended, To: state.StateExecuting},
				{Name: "cancel", From: state.StateSuspended, To: state.StateCancelled},
			}))
			Ω(len(lifecycle.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
		})
	})

	Describe("IsTerminal", func() {
		It("should only mark COMPLETED and CANCELLED terminal", func() {
			Ω(state.IsTerminal(state.StateCompleted)).Should(BeTrue())
			Ω(state.IsTerminal(state.StateCancelled)).Should(BeTrue())
			Ω(state.IsTerminal(state.StateExecuting)).Should(BeFalse())
			Ω(state.IsTerminal(state.StateEnabled)).Should(BeFalse())
		})
	})
})
