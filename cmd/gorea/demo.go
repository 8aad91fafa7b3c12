package main

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/gorea"
)

var demos = map[string]func(){
	"array":    arrayQueueDemo,
	"linked":   linkedQueueDemo,
	"executor": executorDemo,
}

var demoCmd = &cobra.Command{
	Use:   "demo [array|linked|executor]",
	Short: "Run an interactive demonstration",
	Long: `Run a demonstration of one gorea primitive.

Available demos:
  array     ArrayBlockingQueue offer/poll walkthrough, including timeouts
  linked    LinkedBlockingQueue offer/poll walkthrough, including timeouts
  executor  FixedThreadPoolExecutor submitting a batch of tasks`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for name := range demos {
			if strings.HasPrefix(name, toComplete) {
				completions = append(completions, name)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		run, ok := demos[args[0]]
		if !ok {
			return fmt.Errorf("unknown demo %q (want one of: array, linked, executor)", args[0])
		}
		run()
		return nil
	},
}

// arrayQueueDemo mirrors arrayBlockingQueueExample/blockingQueueExample
// from the original C sample program.
func arrayQueueDemo() {
	fmt.Println("> array blocking queue demo")
	runQueueWalkthrough(mustArrayQueue(12))
}

func linkedQueueDemo() {
	fmt.Println("> linked blocking queue demo")
	runQueueWalkthrough(mustLinkedQueue(12))
}

func mustArrayQueue(capacity int) gorea.BlockingQueue[int] {
	q, err := gorea.NewArrayBlockingQueue[int]("demo", capacity)
	if err != nil {
		panic(err)
	}
	return q
}

func mustLinkedQueue(capacity int) gorea.BlockingQueue[int] {
	q, err := gorea.NewLinkedBlockingQueue[int]("demo", capacity)
	if err != nil {
		panic(err)
	}
	return q
}

func runQueueWalkthrough(queue gorea.BlockingQueue[int]) {
	capacity := queue.Cap()

	for i := 0; i < capacity; i++ {
		fmt.Printf("queue.Offer(%d)\n", i)
		queue.Offer(i, -1)
	}

	if !queue.Offer(capacity, 1000) {
		fmt.Printf("timeout (1000 ms): queue.Offer(%d)\n", capacity)
	}

	for i := 0; i < capacity; i++ {
		x, _ := queue.Poll(-1)
		fmt.Printf("queue.Poll() = %d\n", x)
	}

	if _, ok := queue.Poll(1000); !ok {
		fmt.Println("timeout (1000 ms): queue.Poll() = none")
	}
}

// executorDemo mirrors executorExample, submitting a batch of increment
// tasks through a FixedThreadPoolExecutor and timing the drain.
func executorDemo() {
	fmt.Println("> executor demo")

	const (
		workers   = 16
		queueSize = 32
		taskCount = 1_000_000
	)

	var finished atomic.Int64
	executor, err := gorea.NewFixedThreadPoolExecutor(workers, queueSize, "worker-%d",
		gorea.LinkedQueueBuilder("demo"), gorea.WithCallerRunsPolicy())
	if err != nil {
		panic(err)
	}

	var wg sync.WaitGroup
	wg.Add(taskCount)
	start := time.Now()
	for i := 0; i < taskCount; i++ {
		executor.Submit(func() {
			finished.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	executor.Shutdown()
	elapsed := time.Since(start)

	fmt.Printf("number of finished tasks = %d, elapsed time = %v\n", finished.Load(), elapsed)
}
