// Package router provides the named back-navigation stacks ("groups") used
// by the view manager.
//
// Each group is an ordered history of entries. Pushing onto a group returns
// the previous top so the caller can pause and detach it; popping returns
// the removed entry so the caller can tear it down and resume the new top.
//
// # Basic Usage
//
//	groups := router.NewGroups[string]()
//
//	prev, ok := groups.Push("shop", "ShopList")   // ok == false
//	prev, ok = groups.Push("shop", "ShopDetail")  // prev == "ShopList"
//
//	stack, _ := groups.Get("shop")
//	top, _ := stack.Pop()                         // "ShopDetail"
//	resumed, _ := stack.Peek()                    // "ShopList"
//
// Groups and Stack are plain data structures. They do not know anything
// about views, layers or lifecycles, and they are not safe for concurrent
// use: the owner serializes access.
package router
