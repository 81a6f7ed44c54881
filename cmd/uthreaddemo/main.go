// Command uthreaddemo exercises the uthreads scheduler end to end —
// round-robin rotation, block/resume, quantum-measured sleep, and
// self-termination with id reuse — and prints the resulting quantum
// counts.
//
// Run with: go run ./cmd/uthreaddemo/
package main

import (
	"fmt"
	"time"

	"github.com/joeycumines/uthreads"
)

const quantum = 20 * time.Millisecond

// pumpUntil calls sched.Checkpoint() from this goroutine, which backs the
// scheduler's own main thread (tid 0), until cond reports true. Go has no
// way to force-preempt a goroutine that never calls back into the library,
// so main must keep reaching its own checkpoints for the scheduler to ever
// switch away from it and let spawned threads run.
func pumpUntil(sched *uthreads.Scheduler, cond func() bool) {
	for !cond() {
		sched.Checkpoint()
		time.Sleep(quantum / 4)
	}
}

// waitForQuantums blocks until sched has granted at least n total quanta.
func waitForQuantums(sched *uthreads.Scheduler, n uint64) {
	pumpUntil(sched, func() bool { return sched.GetTotalQuantums() >= n })
}

func roundRobin() {
	fmt.Println("=== Round-robin ===")
	sched, err := uthreads.New(quantum)
	if err != nil {
		panic(err)
	}
	defer sched.Shutdown()

	for i := 0; i < 3; i++ {
		if _, err := sched.Spawn(func() {
			for {
				sched.Checkpoint()
			}
		}); err != nil {
			panic(err)
		}
	}

	waitForQuantums(sched, 12)
	for tid := uint32(0); tid <= 3; tid++ {
		q, err := sched.GetQuantumsOf(tid)
		if err != nil {
			panic(err)
		}
		fmt.Printf("tid %d: quantumsRun=%d\n", tid, q)
	}
	fmt.Printf("total=%d\n", sched.GetTotalQuantums())
}

func blockResume() {
	fmt.Println("=== Block/resume ===")
	sched, err := uthreads.New(quantum)
	if err != nil {
		panic(err)
	}
	defer sched.Shutdown()

	a, err := sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}
	_, err = sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}

	waitForQuantums(sched, 2)
	if err := sched.Block(a); err != nil {
		panic(err)
	}
	fmt.Println("blocked thread A")

	waitForQuantums(sched, sched.GetTotalQuantums()+4)
	if err := sched.Resume(a); err != nil {
		panic(err)
	}
	fmt.Println("resumed thread A")
}

func sleepDemo() {
	fmt.Println("=== Sleep ===")
	sched, err := uthreads.New(quantum)
	if err != nil {
		panic(err)
	}
	defer sched.Shutdown()

	_, err = sched.Spawn(func() {
		if err := sched.Sleep(3); err != nil {
			panic(err)
		}
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}
	_, err = sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}

	waitForQuantums(sched, 6)
	q, err := sched.GetQuantumsOf(1)
	if err != nil {
		panic(err)
	}
	fmt.Printf("thread A quantumsRun=%d (including its quantum before the sleep)\n", q)
}

func terminateSelf() {
	fmt.Println("=== Terminate self ===")
	sched, err := uthreads.New(quantum)
	if err != nil {
		panic(err)
	}
	defer sched.Shutdown()

	done := make(chan struct{})
	a, err := sched.Spawn(func() {
		sched.Checkpoint()
		close(done)
		_ = sched.Terminate(1)
	})
	if err != nil {
		panic(err)
	}
	_, err = sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}

	pumpUntil(sched, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	})
	waitForQuantums(sched, sched.GetTotalQuantums()+2)

	again, err := sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("terminated tid=%d, respawned tid=%d (smallest free)\n", a, again)
}

func blockReady() {
	fmt.Println("=== Block a Ready thread ===")
	sched, err := uthreads.New(quantum)
	if err != nil {
		panic(err)
	}
	defer sched.Shutdown()

	_, err = sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}
	b, err := sched.Spawn(func() {
		for {
			sched.Checkpoint()
		}
	})
	if err != nil {
		panic(err)
	}

	if err := sched.Block(b); err != nil {
		panic(err)
	}
	waitForQuantums(sched, 3)
	q, err := sched.GetQuantumsOf(b)
	if err != nil {
		panic(err)
	}
	fmt.Printf("thread B quantumsRun while blocked: %d\n", q)

	if err := sched.Resume(b); err != nil {
		panic(err)
	}
	waitForQuantums(sched, sched.GetTotalQuantums()+2)
	q, err = sched.GetQuantumsOf(b)
	if err != nil {
		panic(err)
	}
	fmt.Printf("thread B quantumsRun after resume: %d\n", q)
}

func main() {
	roundRobin()
	blockResume()
	sleepDemo()
	terminateSelf()
	blockReady()
}
