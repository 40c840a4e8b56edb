// Package uls fetches and unpacks FCC ULS daily licence archives.
//
// Archives are published as l_am_<day>.zip under the daily directory over both
// HTTPS and anonymous FTP. A Fetcher is chosen by the base URL scheme
package uls
