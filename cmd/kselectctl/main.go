// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command kselectctl is a small demonstration harness for v.io/x/kselect:
// it wires up a handful of Pipe handles, optionally feeds one of them after a
// delay, calls kselect.Select once against them, and prints which
// descriptors came back read-ready. It exists
// to exercise the package end to end, not as production tooling.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"v.io/x/kselect/cmd/pflagvar"
	"v.io/x/kselect/kselect"
	"v.io/x/kselect/vlog"
)

type config struct {
	Pipes       int    `flag:"pipes,3,number of demo pipes to multiplex over"`
	TimeoutMS   int    `flag:"timeout-ms,1000,select() timeout in milliseconds; 0 means block forever"`
	FeedPipe    int    `flag:"feed-pipe,0,index of the pipe to push data into after a short delay"`
	FeedDelayMS int    `flag:"feed-delay-ms,100,delay before pushing data into --feed-pipe"`
	FeedData    string `flag:"feed-data,hello,bytes to push into --feed-pipe"`
}

func main() {
	var cfg config
	if err := pflagvar.RegisterFlagsInStruct(pflag.CommandLine, "flag", &cfg, nil, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	vlog.Configure()
	pflag.Parse()

	table := kselect.MapHandleTable{}
	pipes := make([]*kselect.Pipe, cfg.Pipes)
	rfds := &kselect.FDSet{}
	for i := range pipes {
		pipes[i] = kselect.NewPipe(64)
		table[i] = pipes[i]
		rfds.Set(i)
	}

	if cfg.FeedPipe >= 0 && cfg.FeedPipe < len(pipes) {
		go func() {
			time.Sleep(time.Duration(cfg.FeedDelayMS) * time.Millisecond)
			pipes[cfg.FeedPipe].Push([]byte(cfg.FeedData))
		}()
	}

	var tv *kselect.Timeval
	if cfg.TimeoutMS > 0 {
		tv = &kselect.Timeval{
			Sec:  uint32(cfg.TimeoutMS) / 1000,
			Usec: (uint32(cfg.TimeoutMS) % 1000) * 1000,
		}
	}

	n, err := kselect.Select(&kselect.Task{}, table, len(pipes), rfds, nil, nil, tv)
	if err != nil {
		vlog.Errorf("select: %v", err)
		os.Exit(1)
	}
	fmt.Printf("%d descriptor(s) ready\n", n)
	for i := range pipes {
		if rfds.IsSet(i) {
			fmt.Printf("pipe %d is read-ready\n", i)
		}
	}
}
