package main

var ErrorStatus = errorStatus
