package handlers

import _ "embed"

//go:embed assets/login.html
var loginPage []byte
