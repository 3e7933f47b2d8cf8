// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package sbt

import "container/list"

// NodeCache bounds how many internal tree nodes stay resident with their
// Bloom filter bytes loaded. It evicts least-recently-used entries,
// calling each victim's Unload to drop its backing byte slice, the same
// contract the teacher's cache-eviction-driven mmap unmap follows.
type NodeCache struct {
	capacity int
	order    *list.List
	index    map[int]*list.Element
	unload   map[int]func()
}

type cacheEntry struct {
	pos    int
	unload func()
}

// NewNodeCache creates a cache holding at most capacity nodes. capacity
// <= 0 means unbounded (every touched node stays resident).
func NewNodeCache(capacity int) *NodeCache {
	return &NodeCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[int]*list.Element),
	}
}

// Touch marks pos as just-used, running load() the first time pos is
// seen (or after it was evicted), and evicts the least-recently-used
// entry if the cache is now over capacity.
func (c *NodeCache) Touch(pos int, load func()) {
	if el, ok := c.index[pos]; ok {
		c.order.MoveToFront(el)
		return
	}
	load()
	el := c.order.PushFront(&cacheEntry{pos: pos})
	c.index[pos] = el

	if c.capacity > 0 && c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Unload registers the unload callback to run on eviction for pos; tree
// nodes call this right after loading so NodeCache doesn't need to know
// about *node internals.
func (c *NodeCache) Unload(pos int, unload func()) {
	if el, ok := c.index[pos]; ok {
		el.Value.(*cacheEntry).unload = unload
	}
}

func (c *NodeCache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	entry := back.Value.(*cacheEntry)
	if entry.unload != nil {
		entry.unload()
	}
	c.order.Remove(back)
	delete(c.index, entry.pos)
}

// Len reports how many nodes are currently resident.
func (c *NodeCache) Len() int { return c.order.Len() }
