package command

import (
	"strconv"
	"strings"
	"sync"
	"testing"
)

func TestChannelFull(t *testing.T) {
	for _, capacity := range []int{1, 2, 7, DefaultCapacity} {
		var c = NewChannel(capacity)
		for i := 0; i < capacity; i++ {
			if !c.Write(strconv.Itoa(i)) {
				t.Fatal(capacity, i)
			}
		}
		if c.Write("overflow") {
			t.Error(capacity, "write to full channel")
		}
		if msg, ok := c.Read(); !ok || msg != "0" {
			t.Error(capacity, msg, ok)
		}
		if !c.Write("again") {
			t.Error(capacity, "write after read")
		}
		if c.Len() != capacity {
			t.Error(capacity, c.Len())
		}
	}
}

func TestChannelEmptyRead(t *testing.T) {
	var c = NewChannel(4)
	var readIndex, writeIndex = c.readIndex, c.writeIndex
	if _, ok := c.Read(); ok {
		t.Error("read from empty channel")
	}
	if c.readIndex != readIndex || c.writeIndex != writeIndex || c.nonEmpty {
		t.Error("empty read moved cursors")
	}
	c.Write("a")
	c.Read()
	readIndex, writeIndex = c.readIndex, c.writeIndex
	if _, ok := c.Read(); ok {
		t.Error("read from drained channel")
	}
	if c.readIndex != readIndex || c.writeIndex != writeIndex {
		t.Error("empty read moved cursors")
	}
}

func TestChannelOrder(t *testing.T) {
	var c = NewChannel(3)
	var got []string
	for i := 0; i < 10; i++ {
		if !c.Write(strconv.Itoa(i)) {
			t.Fatal(i)
		}
		if i%2 == 1 {
			got = append(got, c.Drain()...)
		}
	}
	if strings.Join(got, ",") != "0,1,2,3,4,5,6,7,8,9" {
		t.Error(got)
	}
}

func TestChannelTruncates(t *testing.T) {
	var c = NewChannel(2)
	var long = strings.Repeat("x", MaxLength+10)
	c.Write(long)
	if msg, _ := c.Read(); msg != long[:MaxLength] {
		t.Error(len(msg))
	}
}

func TestChannelConcurrent(t *testing.T) {
	const n = 1000
	var c = NewChannel(8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if c.Write(strconv.Itoa(i)) {
				i++
			}
		}
	}()
	for want := 0; want < n; {
		if msg, ok := c.Read(); ok {
			if msg != strconv.Itoa(want) {
				t.Fatal(msg, want)
			}
			want++
		}
	}
	wg.Wait()
}
