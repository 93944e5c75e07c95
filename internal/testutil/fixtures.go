// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureURLs lista de entrada típica: IDs numéricos, variantes de query,
// un asset estático y una línea en blanco.
var FixtureURLs = []string{
	"https://example.com/user/1?id=1",
	"https://example.com/user/2?id=2",
	"",
	"https://example.com/logo.png",
	"https://example.com/about",
	"https://example.com/user/3?id=3&sort=asc",
}

// FixtureKept representantes esperados de FixtureURLs con la configuración por defecto.
var FixtureKept = []string{
	"https://example.com/user/3?id=3&sort=asc",
	"https://example.com/user/1?id=1",
	"https://example.com/about",
}

// FixtureUnparseable URLs cuya autoridad IPv6 no se puede separar.
var FixtureUnparseable = []string{
	"http://[::1",
	"http://[::1/admin?id=1",
	"https://[example.com]/",
}

// FixtureLenient URLs con escapes inválidos o sin esquema que se conservan.
var FixtureLenient = []string{
	"https://example.com/sale/50%off?id=1",
	"http://example.com/%zz/x",
	"127.0.0.1:8080/admin?id=1",
}

// FixtureStaticAssets URLs descartadas por las extensiones por defecto.
var FixtureStaticAssets = []string{
	"https://cdn.example.com/app.JS",
	"https://example.com/img/logo.png?v=3",
	"https://example.com/style.css",
}
