package main

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/gorea"
)

const (
	benchConsumers = 16
	benchProducers = 16
	benchQueueSize = 1024
	benchTestSize  = 1_000_000
)

var benchmarks = map[string]func(){
	"array":  func() { runQueueBenchmark("array blocking queue", mustBenchArrayQueue(benchQueueSize)) },
	"linked": func() { runQueueBenchmark("linked blocking queue", mustBenchLinkedQueue(benchQueueSize)) },
}

func mustBenchArrayQueue(capacity int) gorea.BlockingQueue[int64] {
	q, err := gorea.NewArrayBlockingQueue[int64]("bench", capacity)
	if err != nil {
		panic(err)
	}
	return q
}

func mustBenchLinkedQueue(capacity int) gorea.BlockingQueue[int64] {
	q, err := gorea.NewLinkedBlockingQueue[int64]("bench", capacity)
	if err != nil {
		panic(err)
	}
	return q
}

var benchCmd = &cobra.Command{
	Use:   "bench [array|linked]",
	Short: "Run a throughput benchmark",
	Long: `Benchmark one queue implementation under spsc, spmc, mpsc, and mpmc
producer/consumer loads, ported from the original C project's
benchmarkQueue test harness.`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for name := range benchmarks {
			if strings.HasPrefix(name, toComplete) {
				completions = append(completions, name)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		run, ok := benchmarks[args[0]]
		if !ok {
			return fmt.Errorf("unknown benchmark %q (want one of: array, linked)", args[0])
		}
		run()
		return nil
	},
}

// benchStop is the sentinel value a producer enqueues once for each
// consumer when every producer has finished, mirroring the C
// benchmark's `x == -1` exit signal.
const benchStop int64 = -1

func runQueueBenchmark(label string, queue gorea.BlockingQueue[int64]) {
	fmt.Printf("> %s benchmark\n", label)
	fmt.Print("> spsc test: ")
	runQueueBenchmarkMP(queue, 1, 1)
	fmt.Print("> spmc test: ")
	runQueueBenchmarkMP(queue, 1, benchConsumers)
	fmt.Print("> mpsc test: ")
	runQueueBenchmarkMP(queue, benchProducers, 1)
	fmt.Print("> mpmc test: ")
	runQueueBenchmarkMP(queue, benchProducers, benchConsumers)
}

func runQueueBenchmarkMP(queue gorea.BlockingQueue[int64], producers, consumers int) {
	latch, err := gorea.NewCountDownLatch(int64(producers + consumers))
	if err != nil {
		panic(err)
	}

	producerPool, err := gorea.NewFixedThreadPoolExecutor(producers, producers+1, "producer-%d", gorea.LinkedQueueBuilder("bench-producers"))
	if err != nil {
		panic(err)
	}
	consumerPool, err := gorea.NewFixedThreadPoolExecutor(consumers, consumers+1, "consumer-%d", gorea.LinkedQueueBuilder("bench-consumers"))
	if err != nil {
		panic(err)
	}

	var finished, exits atomic.Int64

	start := time.Now()
	for i := 0; i < producers; i++ {
		producerPool.Submit(func() {
			for i := int64(0); i < benchTestSize; i++ {
				queue.Offer(i, -1)
				finished.Add(1)
			}
			if exits.Add(1) == int64(producers) {
				for i := 0; i < consumers; i++ {
					queue.Offer(benchStop, -1)
				}
			}
			latch.CountDown()
		})
	}
	for i := 0; i < consumers; i++ {
		consumerPool.Submit(func() {
			for {
				x, _ := queue.Poll(-1)
				finished.Add(1)
				if x == benchStop {
					latch.CountDown()
					return
				}
			}
		})
	}

	latch.Await(-1)
	elapsed := time.Since(start)

	mops := float64(finished.Load()) / elapsed.Seconds() / 1_000_000
	fmt.Printf("%f mops\n", mops)

	producerPool.Shutdown()
	consumerPool.Shutdown()
}
