package main

// @title           Certificados API
// @version         1.0
// @description     API para gestão de certificados de estudantes com armazenamento de arquivos no Cloudinary

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Cabeçalho de autenticação JWT usando o esquema Bearer. Exemplo: "Bearer {token}"
