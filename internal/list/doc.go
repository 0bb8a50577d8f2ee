// Package list implements bullet, numbered and check lists.
//
// A list holds list items only. The first child of an item is a list
// paragraph with the inline content of the item; nested lists and further
// blocks follow it. The indent of an item is the depth of its list, and
// changing it moves the item between nesting levels:
//
//	list
//	├── listitem
//	│   ├── list-paragraph  "parent"
//	│   └── list
//	│       └── listitem
//	│           └── list-paragraph  "child"
//	└── listitem
//	    └── list-paragraph  "sibling"
package list
