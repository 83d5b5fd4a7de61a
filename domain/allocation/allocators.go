package allocation

import (
	"errors"
	"math/rand"
	"sync"
	"workmill/domain"
)

// Allocator picks one assignee from a candidate roster. It implements the
// allocate phase of offer-allocate-start distribution; the chosen policy is
// configuration, not lifecycle semantics.
type Allocator interface {
	Choose(candidates domain.Roster) (string, error)
}

var ErrNoCandidates = errors.New("no candidates to allocate from")

// RoundRobinAllocator cycles through candidates in roster order.
type RoundRobinAllocator struct {
	mutex sync.Mutex
	next  int
}

func NewRoundRobinAllocator() *RoundRobinAllocator {
	return &RoundRobinAllocator{}
}

func (a *RoundRobinAllocator) Choose(candidates domain.Roster) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()
	chosen := candidates[a.next%len(candidates)]
	a.next++
	return chosen, nil
}

// RandomAllocator picks a uniformly random candidate.
type RandomAllocator struct {
}

func (a *RandomAllocator) Choose(candidates domain.Roster) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	return candidates[rand.Intn(len(candidates))], nil
}

// QueueLengthFunc reports how many open work items an actor currently holds.
type QueueLengthFunc func(actor string) (int, error)

// ShortestQueueAllocator picks the candidate with the fewest open items,
// first listed wins ties.
type ShortestQueueAllocator struct {
	QueueLength QueueLengthFunc
}

func (a *ShortestQueueAllocator) Choose(candidates domain.Roster) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	chosen := ""
	shortest := -1
	for _, candidate := range candidates {
		length, err := a.QueueLength(candidate)
		if err != nil {
			return "", err
		}
		if shortest < 0 || length < shortest {
			chosen = candidate
			shortest = length
		}
	}
	return chosen, nil
}
