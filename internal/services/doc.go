// Package services contains clients for the external collaborators of the
// sync pipeline: the tabular inventory export, wishlist syndication feeds,
// the search index, and the download client.
//
// Every network call takes a context and relies on the caller-supplied HTTP
// client for timeouts. Failures map onto the sentinel errors in the shared
// package so stage boundaries can classify them.
package services
