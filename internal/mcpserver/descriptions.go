package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to read what it returns.

func describeOrderMethods() string {
	return `Computes the stepdown order of the methods in a Java class: callers before the methods they call, so the file reads top-down like a newspaper article.

USE WHEN:
- Reviewing a class whose methods are hard to follow in reading order
- Deciding where a new method belongs before inserting it
- Explaining why stepdown would move a method
- Previewing the sorted source without touching the file

INTERPRETING RESULTS:
- rank 1 is the first method in the sorted class; entry points come first
- callees follow their first caller (depth-first by default)
- sorted=true means the file is already in stepdown order
- source holds the sorted file text and is only present when it differs
- clusters lists methods kept adjacent (overloads, getter/setter pairs)
- cycles lists mutually recursive methods; their relative order falls back to the tie-breaking priorities

METRICS RETURNED:
- Per-method: rank, signature, line, access, callers, callees
- Per-file: type, sorted flag, clusters, cycles, sorted source`
}

func describeCheckOrder() string {
	return `Checks whether Java files are in stepdown order without rewriting anything.

USE WHEN:
- Verifying a change before commit or in CI
- Finding which files in a directory would be reordered
- Confirming that a sort run left nothing behind

INTERPRETING RESULTS:
- status unsorted: the file would be reordered by a sort run
- status sorted or cached: nothing to do
- status skipped: no top-level type, or syntax errors outside any member (reason says which)
- members with syntax errors of their own stay where they are; the rest is still ordered
- errors lists files that could not be read or parsed
- clean=true when no file is out of order

METRICS RETURNED:
- Per-file: path, type, status, methods, reason
- Summary: counts of sorted, unsorted, cached, skipped and failed files`
}

func describeCallGraph() string {
	return `Extracts the local call graph of a Java class: which methods of the class call which others.

USE WHEN:
- Understanding why stepdown places a method where it does
- Spotting helper methods with many callers or entry points with none
- Finding mutual recursion inside a class

INTERPRETING RESULTS:
- nodes are listed in declaration order
- an edge from A to B means A calls B with an unqualified or this. call
- calls on other objects, superclass calls and unresolved calls are not edges
- cycles lists strongly connected groups of methods
- format mermaid returns a flowchart instead of data

METRICS RETURNED:
- nodes: method signatures
- edges: caller/callee pairs
- cycles: groups of mutually recursive methods`
}
