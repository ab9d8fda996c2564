/*
Package linkednode keeps doubly-linked lists inside key-value storage.

A list is three storage locations bound together by a collection: a Header
cell pointing at the first node, a NodeMap holding every node by its index,
and a Tail cell pointing at the last node. Links are indexes, not pointers;
every hop is a NodeMap read.

	Header ──► [n1] ◄──► [n2] ◄──► [n3] ◄── Tail

A node's index is derived from its payload (Data.Index), so the payload is
the only thing stored besides the prev/next links.

Two storage flavors are provided. The plain flavor reads an absent Header or
Tail as the zero index and is only meant for lists that are never empty
once built (genesis-built collections). The option flavor treats an absent
Header or Tail as an empty list and removes the cells when the last node
leaves; dynamically mutated lists use it.

MultiCollection keeps one Header/Tail pair per bucket key while all buckets
share one NodeMap. Nodes do not record their bucket: the caller must pass the
bucket key the node was inserted under. Wherever a wrong key would rewrite a
Header or Tail, the mismatch is detected and reported as
ErrHeaderTailMismatch before anything is written; interior splices never
touch the Header or Tail and so are unaffected by the key.

Every operation stages its writes and commits them only after all checks have
passed, so a failed operation leaves storage as it found it.

The engine has no iterator. Callers walk a list by reading the head index,
loading the node, following Next and repeating until a node has no next.
*/
package linkednode
