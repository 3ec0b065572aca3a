// token emite un JWT firmado para probar la API en local o en staging.
//
// Uso: go run ./cmd/token --user u-1 --role cajero [--branch S1] [--ttl 8h]
// El secreto y el emisor salen de la misma configuración que la API (JWT_SECRET, JWT_ISSUER).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/jhoicas/megamart-analytics/pkg/config"
	"github.com/jhoicas/megamart-analytics/pkg/jwt"
)

func main() {
	user := pflag.StringP("user", "u", "", "user_id del token (obligatorio)")
	role := pflag.StringP("role", "r", jwt.RoleAnalista, "admin | analista | cajero")
	branch := pflag.StringP("branch", "b", "", "sede del usuario (opcional)")
	ttl := pflag.Duration("ttl", 0, "vigencia; por defecto JWT_EXPIRATION_MINUTES")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido")
		os.Exit(1)
	}
	if *ttl <= 0 {
		*ttl = time.Duration(cfg.JWT.Expiration) * time.Minute
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, cfg.JWT.Issuer, jwt.Identity{
		UserID:   *user,
		BranchID: *branch,
		Role:     *role,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		pflag.Usage()
		os.Exit(2)
	}
	fmt.Println(tok)
}
